package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/cityweather/reporter/internal/domain"
)

const currentWeatherPath = "/data/2.5/weather"

// WeatherService fetches and interprets current weather from OpenWeather
type WeatherService struct {
	apiKey string
	client *resty.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewWeatherService creates a new weather service
func NewWeatherService(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *WeatherService {
	return &WeatherService{
		apiKey: apiKey,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetLogger(logger.Sugar()),
		logger: logger,
		now:    time.Now,
	}
}

// Close releases the underlying HTTP client
func (s *WeatherService) Close() error {
	return s.client.Close()
}

// currentWeatherResponse mirrors the fields used from the current weather endpoint.
// Pointers distinguish absent keys from zero values.
type currentWeatherResponse struct {
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *int     `json:"humidity"`
		Pressure  *int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description *string `json:"description"`
	} `json:"weather"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Visibility *int `json:"visibility"`
	Clouds     *struct {
		All *int `json:"all"`
	} `json:"clouds"`
	Rain     *precipitation `json:"rain"`
	Snow     *precipitation `json:"snow"`
	Timezone *int           `json:"timezone"`
	Sys      *struct {
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
}

type precipitation struct {
	OneHour *float64 `json:"1h"`
}

func (p *precipitation) lastHour() float64 {
	if p == nil || p.OneHour == nil {
		return 0
	}
	return *p.OneHour
}

// CurrentWeather performs a single request for city and interprets the response
func (s *WeatherService) CurrentWeather(ctx context.Context, city string) (domain.WeatherReport, error) {
	s.logger.Debug("requesting weather information", zap.String("city", city))

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"appid": s.apiKey,
			"q":     city,
		}).
		Get(currentWeatherPath)
	if err != nil {
		return domain.WeatherReport{}, classifyTransportError(city, s.apiKey, err)
	}

	switch code := resp.StatusCode(); code {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.WeatherReport{}, &domain.LookupError{Kind: domain.KindCityNotFound, City: city, StatusCode: code}
	case http.StatusUnauthorized:
		return domain.WeatherReport{}, &domain.LookupError{Kind: domain.KindUnauthorized, City: city, StatusCode: code}
	default:
		return domain.WeatherReport{}, &domain.LookupError{Kind: domain.KindUnexpectedStatus, City: city, StatusCode: code}
	}

	return interpret(city, resp.Bytes(), s.now().UTC())
}

// classifyTransportError maps a failed round trip to its lookup error kind.
// The kept error never carries the request URL, which holds the api key.
func classifyTransportError(city, apiKey string, err error) error {
	kind := domain.KindRequest

	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		kind = domain.KindTimeout
	case errors.As(err, &opErr):
		kind = domain.KindConnection
	}

	return &domain.LookupError{Kind: kind, City: city, Err: redact(err, apiKey)}
}

// redact drops the *url.Error wrapper and scrubs any remaining copy of apiKey
func redact(err error, apiKey string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = errors.Wrapf(urlErr.Err, "%s %s", urlErr.Op, currentWeatherPath)
	}
	if apiKey != "" && strings.Contains(err.Error(), apiKey) {
		return errors.New(strings.ReplaceAll(err.Error(), apiKey, "REDACTED"))
	}
	return err
}

// interpret decodes a 200 body into a report
func interpret(city string, body []byte, observedAt time.Time) (domain.WeatherReport, error) {
	var data currentWeatherResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.WeatherReport{}, &domain.LookupError{
			Kind: domain.KindInvalidData,
			City: city,
			Err:  errors.Wrap(err, "decode response"),
		}
	}

	missing := func(key string) error {
		return &domain.LookupError{Kind: domain.KindMissingData, City: city, Key: key}
	}

	switch {
	case data.Main == nil:
		return domain.WeatherReport{}, missing("main")
	case data.Main.Temp == nil:
		return domain.WeatherReport{}, missing("main.temp")
	case data.Main.FeelsLike == nil:
		return domain.WeatherReport{}, missing("main.feels_like")
	case data.Wind == nil:
		return domain.WeatherReport{}, missing("wind")
	case data.Wind.Speed == nil:
		return domain.WeatherReport{}, missing("wind.speed")
	case data.Main.Humidity == nil:
		return domain.WeatherReport{}, missing("main.humidity")
	case len(data.Weather) == 0:
		return domain.WeatherReport{}, missing("weather[0]")
	case data.Weather[0].Description == nil:
		return domain.WeatherReport{}, missing("weather[0].description")
	case data.Timezone == nil:
		return domain.WeatherReport{}, missing("timezone")
	case data.Main.Pressure == nil:
		return domain.WeatherReport{}, missing("main.pressure")
	case data.Clouds == nil:
		return domain.WeatherReport{}, missing("clouds")
	case data.Clouds.All == nil:
		return domain.WeatherReport{}, missing("clouds.all")
	case data.Sys == nil:
		return domain.WeatherReport{}, missing("sys")
	case data.Sys.Sunrise == nil:
		return domain.WeatherReport{}, missing("sys.sunrise")
	case data.Sys.Sunset == nil:
		return domain.WeatherReport{}, missing("sys.sunset")
	}

	return domain.WeatherReport{
		City:           city,
		TemperatureK:   *data.Main.Temp,
		FeelsLikeK:     *data.Main.FeelsLike,
		Humidity:       *data.Main.Humidity,
		Pressure:       *data.Main.Pressure,
		WindSpeed:      *data.Wind.Speed,
		Description:    *data.Weather[0].Description,
		Visibility:     data.Visibility,
		Cloudiness:     *data.Clouds.All,
		Rain1h:         data.Rain.lastHour(),
		Snow1h:         data.Snow.lastHour(),
		TimezoneOffset: *data.Timezone,
		Sunrise:        *data.Sys.Sunrise,
		Sunset:         *data.Sys.Sunset,
		ObservedAt:     observedAt,
	}, nil
}
