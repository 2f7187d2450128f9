package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cityweather/reporter/internal/domain"
	"github.com/cityweather/reporter/internal/report"
	"github.com/cityweather/reporter/internal/repository/postgres"
)

const fullResponse = `{
	"coord": {"lon": -0.1257, "lat": 51.5085},
	"weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
	"main": {"temp": 300.00, "feels_like": 301.15, "pressure": 1012, "humidity": 40},
	"visibility": 10000,
	"wind": {"speed": 3.6, "deg": 240},
	"rain": {"1h": 0.25},
	"snow": {"1h": 1.5},
	"clouds": {"all": 20},
	"dt": 1760702400,
	"sys": {"country": "GB", "sunrise": 1760679000, "sunset": 1760717700},
	"timezone": 3600,
	"name": "London",
	"cod": 200
}`

const minimalResponse = `{
	"weather": [{"description": "mist"}],
	"main": {"temp": 280.15, "feels_like": 278.15, "pressure": 1020, "humidity": 93},
	"wind": {"speed": 1},
	"clouds": {"all": 100},
	"sys": {"sunrise": 1760679000, "sunset": 1760717700},
	"timezone": -18000
}`

func newTestService(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *WeatherService {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	svc := NewWeatherService(ts.URL, "test-key", timeout, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func expectKind(t *testing.T, err error, kind domain.ErrorKind) *domain.LookupError {
	t.Helper()
	var lookupErr *domain.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected *domain.LookupError, got %T: %v", err, err)
	}
	if lookupErr.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, lookupErr.Kind, err)
	}
	return lookupErr
}

func TestCurrentWeatherBuildsRequest(t *testing.T) {
	var gotPath, gotKey, gotCity string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("appid")
		gotCity = r.URL.Query().Get("q")
		respond(http.StatusOK, fullResponse)(w, r)
	}, time.Second)

	if _, err := svc.CurrentWeather(context.Background(), "São Paulo"); err != nil {
		t.Fatalf("CurrentWeather failed: %v", err)
	}

	if gotPath != "/data/2.5/weather" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("appid = %q", gotKey)
	}
	if gotCity != "São Paulo" {
		t.Errorf("q = %q", gotCity)
	}
}

func TestCurrentWeatherSuccess(t *testing.T) {
	svc := newTestService(t, respond(http.StatusOK, fullResponse), time.Second)

	report, err := svc.CurrentWeather(context.Background(), "London")
	if err != nil {
		t.Fatalf("CurrentWeather failed: %v", err)
	}

	if report.City != "London" || report.TemperatureK != 300 || report.FeelsLikeK != 301.15 {
		t.Errorf("unexpected temperatures: %+v", report)
	}
	if report.Humidity != 40 || report.Pressure != 1012 || report.WindSpeed != 3.6 {
		t.Errorf("unexpected humidity/pressure/wind: %+v", report)
	}
	if report.Description != "clear sky" || report.Cloudiness != 20 {
		t.Errorf("unexpected description/cloudiness: %+v", report)
	}
	if report.Visibility == nil || *report.Visibility != 10000 {
		t.Errorf("unexpected visibility: %v", report.Visibility)
	}
	if report.Rain1h != 0.25 || report.Snow1h != 1.5 {
		t.Errorf("unexpected precipitation: rain=%v snow=%v", report.Rain1h, report.Snow1h)
	}
	if report.TimezoneOffset != 3600 || report.Sunrise != 1760679000 || report.Sunset != 1760717700 {
		t.Errorf("unexpected time fields: %+v", report)
	}
	if want := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC); !report.ObservedAt.Equal(want) {
		t.Errorf("observed at = %v, want %v", report.ObservedAt, want)
	}

	c, f := report.Temperature()
	if got := int(c*100 + 0.5); got != 2685 {
		t.Errorf("celsius = %v", c)
	}
	if got := int(f*100 + 0.5); got != 8033 {
		t.Errorf("fahrenheit = %v", f)
	}
}

func TestCurrentWeatherOptionalFieldsDefault(t *testing.T) {
	svc := newTestService(t, respond(http.StatusOK, minimalResponse), time.Second)

	report, err := svc.CurrentWeather(context.Background(), "Lima")
	if err != nil {
		t.Fatalf("CurrentWeather failed: %v", err)
	}

	if report.Visibility != nil {
		t.Errorf("expected nil visibility, got %d", *report.Visibility)
	}
	if _, ok := report.VisibilityKm(); ok {
		t.Error("expected visibility to be unavailable")
	}
	if report.Rain1h != 0 || report.Snow1h != 0 {
		t.Errorf("expected zero precipitation, got rain=%v snow=%v", report.Rain1h, report.Snow1h)
	}
}

func TestCurrentWeatherPrecipitationWithoutLastHour(t *testing.T) {
	body := `{
		"weather": [{"description": "light rain"}],
		"main": {"temp": 285, "feels_like": 284, "pressure": 1000, "humidity": 80},
		"wind": {"speed": 5.1},
		"rain": {"3h": 2.0},
		"clouds": {"all": 75},
		"sys": {"sunrise": 1, "sunset": 2},
		"timezone": 0
	}`
	svc := newTestService(t, respond(http.StatusOK, body), time.Second)

	report, err := svc.CurrentWeather(context.Background(), "Dublin")
	if err != nil {
		t.Fatalf("CurrentWeather failed: %v", err)
	}
	if report.Rain1h != 0 {
		t.Errorf("expected rain 0 without a 1h value, got %v", report.Rain1h)
	}
}

func TestCurrentWeatherStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		kind   domain.ErrorKind
	}{
		{http.StatusNotFound, domain.KindCityNotFound},
		{http.StatusUnauthorized, domain.KindUnauthorized},
		{http.StatusTooManyRequests, domain.KindUnexpectedStatus},
		{http.StatusInternalServerError, domain.KindUnexpectedStatus},
	}

	for _, tc := range cases {
		svc := newTestService(t, respond(tc.status, `{"cod": "x", "message": "nope"}`), time.Second)

		_, err := svc.CurrentWeather(context.Background(), "Atlantis")
		lookupErr := expectKind(t, err, tc.kind)
		if lookupErr.StatusCode != tc.status {
			t.Errorf("status code = %d, want %d", lookupErr.StatusCode, tc.status)
		}
		if lookupErr.City != "Atlantis" {
			t.Errorf("city = %q, want Atlantis", lookupErr.City)
		}
	}
}

func TestCurrentWeatherMalformedJSON(t *testing.T) {
	svc := newTestService(t, respond(http.StatusOK, `{"main": `), time.Second)

	_, err := svc.CurrentWeather(context.Background(), "London")
	lookupErr := expectKind(t, err, domain.KindInvalidData)
	if lookupErr.Err == nil {
		t.Fatal("expected the decode error to be kept")
	}
}

func TestCurrentWeatherWrongFieldType(t *testing.T) {
	body := `{"main": {"temp": "hot", "feels_like": 1, "pressure": 1, "humidity": 1}}`
	svc := newTestService(t, respond(http.StatusOK, body), time.Second)

	_, err := svc.CurrentWeather(context.Background(), "London")
	expectKind(t, err, domain.KindInvalidData)
}

func TestCurrentWeatherMissingKeys(t *testing.T) {
	cases := []struct {
		name string
		body string
		key  string
	}{
		{"no main", `{"wind": {"speed": 1}}`, "main"},
		{"no temp", `{"main": {"feels_like": 1, "pressure": 1, "humidity": 1}}`, "main.temp"},
		{
			"empty weather",
			`{"main": {"temp": 1, "feels_like": 1, "pressure": 1, "humidity": 1}, "wind": {"speed": 1}, "weather": []}`,
			"weather[0]",
		},
		{
			"no timezone",
			`{"main": {"temp": 1, "feels_like": 1, "pressure": 1, "humidity": 1}, "wind": {"speed": 1},
			  "weather": [{"description": "fog"}], "clouds": {"all": 1}, "sys": {"sunrise": 1, "sunset": 2}}`,
			"timezone",
		},
		{
			"no sys",
			`{"main": {"temp": 1, "feels_like": 1, "pressure": 1, "humidity": 1}, "wind": {"speed": 1},
			  "weather": [{"description": "fog"}], "clouds": {"all": 1}, "timezone": 0}`,
			"sys",
		},
		{
			"null clouds",
			`{"main": {"temp": 1, "feels_like": 1, "pressure": 1, "humidity": 1}, "wind": {"speed": 1},
			  "weather": [{"description": "fog"}], "clouds": null, "sys": {"sunrise": 1, "sunset": 2}, "timezone": 0}`,
			"clouds",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, respond(http.StatusOK, tc.body), time.Second)

			_, err := svc.CurrentWeather(context.Background(), "London")
			lookupErr := expectKind(t, err, domain.KindMissingData)
			if lookupErr.Key != tc.key {
				t.Errorf("key = %q, want %q", lookupErr.Key, tc.key)
			}
		})
	}
}

// closedAddr reserves a port, then closes the listener so nothing accepts on it
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func expectNoKey(t *testing.T, err error) {
	t.Helper()
	if strings.Contains(err.Error(), "test-key") {
		t.Errorf("api key leaked into error: %v", err)
	}
	if msg := report.Message(err); strings.Contains(msg, "test-key") {
		t.Errorf("api key leaked into message: %s", msg)
	}
}

func TestCurrentWeatherConnectionRefused(t *testing.T) {
	svc := NewWeatherService("http://"+closedAddr(t), "test-key", time.Second, zaptest.NewLogger(t))
	defer svc.Close()

	_, err := svc.CurrentWeather(context.Background(), "London")
	expectKind(t, err, domain.KindConnection)
	expectNoKey(t, err)
}

func TestTransportFailureLogsOmitKey(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	weatherSvc := NewWeatherService("http://"+closedAddr(t), "test-key", time.Second, logger)
	defer weatherSvc.Close()
	reportSvc := NewReportService(weatherSvc, postgres.NewMemoryRepository(), logger)

	_, err := reportSvc.Lookup(context.Background(), "London")
	expectKind(t, err, domain.KindConnection)

	if logs.Len() == 0 {
		t.Fatal("expected the failed lookup to be logged")
	}
	for _, entry := range logs.All() {
		line := entry.Message
		for k, v := range entry.ContextMap() {
			line += fmt.Sprintf(" %s=%v", k, v)
		}
		if strings.Contains(line, "test-key") {
			t.Errorf("api key leaked into log: %s", line)
		}
	}
}

func TestRedactScrubsKey(t *testing.T) {
	err := redact(errors.New(`Get "http://host/data/2.5/weather?appid=test-key&q=x": boom`), "test-key")
	if strings.Contains(err.Error(), "test-key") {
		t.Fatalf("key not scrubbed: %v", err)
	}

	plain := errors.New("dial tcp: connection refused")
	if got := redact(plain, ""); got != plain {
		t.Fatalf("expected error untouched without a key, got %v", got)
	}
}

func TestCurrentWeatherTimeout(t *testing.T) {
	release := make(chan struct{})
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := svc.CurrentWeather(context.Background(), "London")
	expectKind(t, err, domain.KindTimeout)
	expectNoKey(t, err)
}

func TestCurrentWeatherContextDeadline(t *testing.T) {
	release := make(chan struct{})
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 10*time.Second)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.CurrentWeather(ctx, "London")
	expectKind(t, err, domain.KindTimeout)
}

func TestCurrentWeatherUnsupportedScheme(t *testing.T) {
	svc := NewWeatherService("ftp://example.invalid", "test-key", time.Second, zaptest.NewLogger(t))
	defer svc.Close()

	_, err := svc.CurrentWeather(context.Background(), "London")
	lookupErr := expectKind(t, err, domain.KindRequest)
	if lookupErr.Detail() == "" {
		t.Fatal("expected the underlying message to be kept")
	}
	expectNoKey(t, err)
}
