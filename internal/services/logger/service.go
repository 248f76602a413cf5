package logger

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	redacted    = "REDACTED"
	maxBodySnip = 1024
)

// secretParams are query parameters that never reach the log file.
var secretParams = []string{"access_key", "key", "appid", "api_key"}

type RoundTripper struct {
	Logger *zap.Logger
	Proxy  http.RoundTripper
}

func NewRoundTripper(logger *zap.Logger) *RoundTripper {
	return &RoundTripper{
		Logger: logger,
		Proxy:  http.DefaultTransport,
	}
}

func (l *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.Proxy.RoundTrip(req)
	duration := time.Since(start)
	safeURL := redactURL(req.URL)

	if err != nil {
		l.Logger.Error("HTTP request failed",
			zap.String("method", req.Method),
			zap.String("url", safeURL),
			zap.Duration("duration", duration),
			zap.Error(RedactError(err)),
		)
		return nil, err
	}

	// Only the logged prefix is buffered; the rest streams to the caller.
	snip, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySnip))
	if err != nil {
		_ = resp.Body.Close()
		l.Logger.Error("Failed to read response body",
			zap.String("method", req.Method),
			zap.String("url", safeURL),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	resp.Body = prefixedBody{
		Reader: io.MultiReader(bytes.NewReader(snip), resp.Body),
		Closer: resp.Body,
	}

	l.Logger.Info("HTTP request completed",
		zap.String("method", req.Method),
		zap.String("url", safeURL),
		zap.ByteString("body_snipped", snip),
		zap.Int64("content_length", resp.ContentLength),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

type prefixedBody struct {
	io.Reader
	io.Closer
}

// RedactURL renders u with secret query parameters masked.
func RedactURL(u *url.URL) string {
	return redactURL(u)
}

// RedactError masks secret query parameters in the URL that net/http
// embeds in *url.Error, so the error can be logged or wrapped safely.
func RedactError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		ue.URL = redacted
		return err
	}
	ue.URL = redactURL(u)
	return err
}

func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, redacted)
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	c := *u
	c.RawQuery = q.Encode()
	return c.String()
}
