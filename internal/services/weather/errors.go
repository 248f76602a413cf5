package weather

import (
	"errors"
	"fmt"
)

// Provider names an upstream the lookup depends on.
type Provider string

const (
	ProviderGeolocation Provider = "geolocation"
	ProviderForecast    Provider = "forecast"
)

const (
	msgLocationUnavailable = "Location tracker API services are unavailable at the moment."
	msgWeatherUnavailable  = "Weather tracker API services are unavailable at the moment."

	msgMissingInput  = "You must provide either the user's IP address or the lat & long coordinates."
	msgInvalidNumber = "A valid number is required."
	msgUserIPTooLong = "Ensure this field has no more than 45 characters."
)

// NonFieldErrors is the field name used for cross-field validation failures.
const NonFieldErrors = "non_field_errors"

// MaxUserIPLength is the longest accepted textual IP (IPv6 with zone).
const MaxUserIPLength = 45

var (
	errUnexpectedStatus = errors.New("unexpected status")
	errMalformedPayload = errors.New("malformed payload")
)

// ValidationError reports request input that cannot be looked up.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// UpstreamUnavailableError reports a provider that failed or answered with something unusable.
type UpstreamUnavailableError struct {
	Provider Provider
	Err      error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s provider unavailable: %v", e.Provider, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// Detail is the caller-facing message; it never includes the cause.
func (e *UpstreamUnavailableError) Detail() string {
	if e.Provider == ProviderGeolocation {
		return msgLocationUnavailable
	}
	return msgWeatherUnavailable
}

func upstreamUnavailable(p Provider, err error) error {
	var ue *UpstreamUnavailableError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamUnavailableError{Provider: p, Err: err}
}
