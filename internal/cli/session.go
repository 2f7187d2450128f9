package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cityweather/reporter/internal/domain"
	"github.com/cityweather/reporter/internal/report"
)

const (
	cityPrompt  = "Which city do you want to know about: "
	retryPrompt = "\nWould you like to check weather for another city? (y/n): "
	farewell    = "Thank you for using the Weather App!"
)

// Lookuper resolves a city name to a report
type Lookuper interface {
	Lookup(ctx context.Context, city string) (domain.WeatherReport, error)
}

// Session runs the prompt / lookup / retry loop over a pair of streams
type Session struct {
	lookup Lookuper
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger
}

// NewSession creates a session reading answers from in and writing to out
func NewSession(lookup Lookuper, in io.Reader, out io.Writer, logger *zap.Logger) *Session {
	return &Session{
		lookup: lookup,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Run loops until the user declines to continue or input ends.
// Lookup failures are printed and never end the loop.
func (s *Session) Run(ctx context.Context) error {
	for {
		city, ok := s.ask(cityPrompt)
		if !ok {
			break
		}

		s.reportCity(ctx, city)

		answer, ok := s.ask(retryPrompt)
		if !ok || !wantsAnother(answer) {
			break
		}
	}

	if err := s.in.Err(); err != nil {
		s.logger.Error("error reading input", zap.Error(err))
		return err
	}

	_, err := fmt.Fprintln(s.out, farewell)
	return err
}

// reportCity performs one lookup and prints either the report or the failure
func (s *Session) reportCity(ctx context.Context, city string) {
	r, err := s.lookup.Lookup(ctx, city)
	if err != nil {
		fmt.Fprintln(s.out, report.Message(err))
		return
	}

	if err := report.Print(s.out, r); err != nil {
		s.logger.Error("error printing report", zap.Error(err))
	}
}

// ask prints prompt and reads one line; false means input ended
func (s *Session) ask(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		return "", false
	}
	return s.in.Text(), true
}

func wantsAnother(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
