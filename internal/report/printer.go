// Package report renders weather reports and lookup failures for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/cityweather/reporter/internal/domain"
)

// Print writes the fixed multi-line report for r
func Print(w io.Writer, r domain.WeatherReport) error {
	c, f := r.Temperature()
	flc, flf := r.FeelsLike()
	city := r.City

	lines := []string{
		"",
		fmt.Sprintf("Weather Information for %s:", city),
		"",
		fmt.Sprintf("Temperature in %s: %.2f°C or %.2f°F", city, c, f),
		fmt.Sprintf("Temperature in %s feels like: %.2f°C or %.2f°F", city, flc, flf),
		fmt.Sprintf("Local Time: %s", r.LocalTime().Format(time.DateTime)),
		fmt.Sprintf("Humidity in %s: %d%%", city, r.Humidity),
		fmt.Sprintf("Wind Speed in %s: %s m/s", city, number(r.WindSpeed)),
		fmt.Sprintf("General Weather in %s: %s", city, r.Description),
		fmt.Sprintf("Pressure in %s: %d hPa", city, r.Pressure),
	}

	if km, ok := r.VisibilityKm(); ok {
		lines = append(lines, fmt.Sprintf("Visibility in %s: %.1f km", city, km))
	} else {
		lines = append(lines, "Visibility data not available")
	}

	lines = append(lines,
		fmt.Sprintf("Cloudiness in %s: %d%%", city, r.Cloudiness),
		fmt.Sprintf("Rain volume in %s: %s mm in the last hour", city, number(r.Rain1h)),
		fmt.Sprintf("Snow volume in %s: %s mm in the last hour", city, number(r.Snow1h)),
		fmt.Sprintf("Sun rises in %s at %s local time", city, r.SunriseLocal().Format(time.TimeOnly)),
		fmt.Sprintf("Sun sets in %s at %s local time", city, r.SunsetLocal().Format(time.TimeOnly)),
	)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// number prints a measurement the way upstream sent it: 4, 3.6, 0.25
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Message returns the user-facing line for a failed lookup
func Message(err error) string {
	var e *domain.LookupError
	if !errors.As(err, &e) {
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}

	switch e.Kind {
	case domain.KindEmptyCity:
		return "Error: City name cannot be empty. Please enter a valid city name."
	case domain.KindCityNotFound:
		return fmt.Sprintf("Error: City '%s' not found. Please check the spelling and try again.", e.City)
	case domain.KindUnauthorized:
		return "Error: Invalid API key. Please check your API key."
	case domain.KindUnexpectedStatus:
		return fmt.Sprintf("Error: Unable to fetch weather data. Status code: %d", e.StatusCode)
	case domain.KindConnection:
		return "Error: Unable to connect to the weather service. Please check your internet connection."
	case domain.KindTimeout:
		return "Error: Request timed out. Please try again later."
	case domain.KindRequest:
		return fmt.Sprintf("Error: An error occurred while making the request: %s", e.Detail())
	case domain.KindMissingData:
		return fmt.Sprintf("Error: Missing expected data in the response. Key not found: %s", e.Key)
	case domain.KindInvalidData:
		return fmt.Sprintf("Error: Invalid data received from the API: %s", e.Detail())
	default:
		return fmt.Sprintf("An unexpected error occurred: %s", e.Detail())
	}
}
