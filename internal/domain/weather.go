package domain

import (
	"time"

	"github.com/cityweather/reporter/pkg/units"
)

// WeatherReport represents current conditions for a city as reported upstream
type WeatherReport struct {
	ID             string    `json:"id"`
	City           string    `json:"city"`
	TemperatureK   float64   `json:"temperature_k"`
	FeelsLikeK     float64   `json:"feels_like_k"`
	Humidity       int       `json:"humidity"`
	Pressure       int       `json:"pressure"`
	WindSpeed      float64   `json:"wind_speed"`
	Description    string    `json:"description"`
	Visibility     *int      `json:"visibility,omitempty"` // meters; nil when upstream omits it
	Cloudiness     int       `json:"cloudiness"`
	Rain1h         float64   `json:"rain_1h"`
	Snow1h         float64   `json:"snow_1h"`
	TimezoneOffset int       `json:"timezone_offset"` // seconds east of UTC
	Sunrise        int64     `json:"sunrise"`
	Sunset         int64     `json:"sunset"`
	ObservedAt     time.Time `json:"observed_at"`
}

// Location returns the fixed zone described by the report's UTC offset
func (r WeatherReport) Location() *time.Location {
	return time.FixedZone("", r.TimezoneOffset)
}

// LocalTime returns the observation instant in the city's local time
func (r WeatherReport) LocalTime() time.Time {
	return r.ObservedAt.In(r.Location())
}

// SunriseLocal returns sunrise in the city's local time
func (r WeatherReport) SunriseLocal() time.Time {
	return time.Unix(r.Sunrise, 0).In(r.Location())
}

// SunsetLocal returns sunset in the city's local time
func (r WeatherReport) SunsetLocal() time.Time {
	return time.Unix(r.Sunset, 0).In(r.Location())
}

// Temperature returns the air temperature in Celsius and Fahrenheit
func (r WeatherReport) Temperature() (celsius, fahrenheit float64) {
	return units.KelvinToCelsiusFahrenheit(r.TemperatureK)
}

// FeelsLike returns the apparent temperature in Celsius and Fahrenheit
func (r WeatherReport) FeelsLike() (celsius, fahrenheit float64) {
	return units.KelvinToCelsiusFahrenheit(r.FeelsLikeK)
}

// VisibilityKm returns visibility in kilometers and whether it was reported
func (r WeatherReport) VisibilityKm() (float64, bool) {
	if r.Visibility == nil {
		return 0, false
	}
	return units.MetersToKilometers(*r.Visibility), true
}

// WeatherResponse wraps a report with metadata
type WeatherResponse struct {
	Data    WeatherView `json:"data"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// WeatherView is the API representation of a report with derived values filled in
type WeatherView struct {
	WeatherReport
	TemperatureC float64  `json:"temperature_c"`
	TemperatureF float64  `json:"temperature_f"`
	FeelsLikeC   float64  `json:"feels_like_c"`
	FeelsLikeF   float64  `json:"feels_like_f"`
	VisibilityKm *float64 `json:"visibility_km,omitempty"`
	LocalTime    string   `json:"local_time"`
	SunriseLocal string   `json:"sunrise_local"`
	SunsetLocal  string   `json:"sunset_local"`
}

// NewWeatherView derives the API view of a report
func NewWeatherView(r WeatherReport) WeatherView {
	c, f := r.Temperature()
	flc, flf := r.FeelsLike()

	view := WeatherView{
		WeatherReport: r,
		TemperatureC:  units.RoundTo(c, 2),
		TemperatureF:  units.RoundTo(f, 2),
		FeelsLikeC:    units.RoundTo(flc, 2),
		FeelsLikeF:    units.RoundTo(flf, 2),
		LocalTime:     r.LocalTime().Format(time.DateTime),
		SunriseLocal:  r.SunriseLocal().Format(time.TimeOnly),
		SunsetLocal:   r.SunsetLocal().Format(time.TimeOnly),
	}

	if km, ok := r.VisibilityKm(); ok {
		km = units.RoundTo(km, 1)
		view.VisibilityKm = &km
	}

	return view
}
