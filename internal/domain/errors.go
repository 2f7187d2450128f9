package domain

import (
	"fmt"
)

// ErrorKind names the reason a lookup produced no report
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindEmptyCity
	KindCityNotFound
	KindUnauthorized
	KindUnexpectedStatus
	KindConnection
	KindTimeout
	KindRequest
	KindMissingData
	KindInvalidData
)

func (k ErrorKind) String() string {
	switch k {
	case KindEmptyCity:
		return "empty_city"
	case KindCityNotFound:
		return "city_not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnexpectedStatus:
		return "unexpected_status"
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindRequest:
		return "request"
	case KindMissingData:
		return "missing_data"
	case KindInvalidData:
		return "invalid_data"
	default:
		return "unexpected"
	}
}

// LookupError is the failure half of a lookup result.
// Only the fields relevant to Kind are set.
type LookupError struct {
	Kind       ErrorKind
	City       string
	StatusCode int
	Key        string
	Err        error
}

func (e *LookupError) Error() string {
	switch e.Kind {
	case KindEmptyCity:
		return "lookup: city name is empty"
	case KindCityNotFound:
		return fmt.Sprintf("lookup: city %q not found", e.City)
	case KindUnauthorized:
		return "lookup: invalid api key"
	case KindUnexpectedStatus:
		return fmt.Sprintf("lookup: unexpected status code %d", e.StatusCode)
	case KindMissingData:
		return fmt.Sprintf("lookup: missing key %s", e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("lookup: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("lookup: %s", e.Kind)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Detail returns the underlying error message, or an empty string
func (e *LookupError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
