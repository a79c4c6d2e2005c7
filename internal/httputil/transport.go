// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultUserAgent identifies outreach in outbound requests.
const DefaultUserAgent = "outreach/0.1"

// Transport tags outbound requests with a product User-Agent and logs each
// round trip at debug level, or at warn level for transport errors and 4xx/5xx
// responses. It never retries: a failed call is returned as-is.
type Transport struct {
	// Base performs the requests. Nil uses http.DefaultTransport.
	Base http.RoundTripper

	// UserAgent is prepended to any User-Agent the caller already set.
	// Empty uses DefaultUserAgent.
	UserAgent string

	Logger *zap.Logger
}

// NewClient returns an http.Client using Transport with the default
// User-Agent. A nil logger disables logging.
func NewClient(logger *zap.Logger) *http.Client {
	return &http.Client{Transport: &Transport{Logger: logger}}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", userAgent(t.UserAgent, req.Header.Get("User-Agent")))

	start := time.Now()
	resp, err := base.RoundTrip(r)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		logger.Warn("http call failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	fields = append(fields, zap.Int("status", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		logger.Warn("http call returned error status", fields...)
	} else {
		logger.Debug("http call", fields...)
	}
	return resp, nil
}

func userAgent(product, existing string) string {
	if product == "" {
		product = DefaultUserAgent
	}
	existing = strings.TrimSpace(existing)
	switch {
	case existing == "":
		return product
	case strings.Contains(existing, product):
		return existing
	}
	return product + " " + existing
}
