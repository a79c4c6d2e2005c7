// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTransportSetsUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "google-genai-sdk/1.37.0 gl-go/go1.25")

	resp, err := NewClient(nil).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "outreach/0.1 google-genai-sdk/1.37.0 gl-go/go1.25", got)
	assert.Equal(t, "google-genai-sdk/1.37.0 gl-go/go1.25", req.Header.Get("User-Agent"), "caller request untouched")
}

func TestTransportLogsCalls(t *testing.T) {
	status := http.StatusOK
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer ts.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client := NewClient(zap.New(core))

	resp, err := client.Get(ts.URL + "/v1beta/models/x:generateContent")
	require.NoError(t, err)
	resp.Body.Close()

	status = http.StatusTooManyRequests
	resp, err = client.Get(ts.URL + "/again")
	require.NoError(t, err)
	resp.Body.Close()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "/v1beta/models/x:generateContent", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusTooManyRequests, entries[1].ContextMap()["status"])
}

type failingRT struct{}

func (failingRT) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTransportDoesNotRetry(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	resp, err := NewClient(nil).Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestTransportError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := &http.Client{Transport: &Transport{Base: failingRT{}, Logger: zap.New(core)}}

	_, err := client.Get("http://example.invalid/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, logs.FilterMessage("http call failed").Len())
}

func TestUserAgent(t *testing.T) {
	tests := []struct {
		product, existing, want string
	}{
		{"", "", DefaultUserAgent},
		{"custom/2", "", "custom/2"},
		{"", "sdk/1", "outreach/0.1 sdk/1"},
		{"", "outreach/0.1 sdk/1", "outreach/0.1 sdk/1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, userAgent(tt.product, tt.existing))
	}
}
