// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docmark/pkg/types"
)

func TestNewDotsClient_RequiresCredentials(t *testing.T) {
	_, err := NewDotsClient(types.OCRConfig{BaseURL: "http://x"}, nil)
	assert.Error(t, err)
	_, err = NewDotsClient(types.OCRConfig{APIKey: "k"}, nil)
	assert.Error(t, err)
}

func TestDotsClient_Recognize(t *testing.T) {
	var got chatRequest
	var auth, path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"# Heading"},"finish_reason":"stop"}]}`))
	}))
	defer ts.Close()

	c, err := NewDotsClient(types.OCRConfig{BaseURL: ts.URL + "/v1/", APIKey: "secret"}, nil)
	require.NoError(t, err)

	text, err := c.Recognize(context.Background(), Page{Image: []byte{1, 2, 3}, MIME: "image/jpeg"}, "Extract.")
	require.NoError(t, err)

	assert.Equal(t, "# Heading", text)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "dots.ocr", got.Model)
	assert.Equal(t, 32768, got.MaxCompletionTokens)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	assert.InDelta(t, 0.9, got.TopP, 1e-9)
	require.Len(t, got.Messages, 1)
	parts := got.Messages[0].Content
	require.Len(t, parts, 2)
	assert.Equal(t, "data:image/jpeg;base64,AQID", parts[0].ImageURL.URL)
	assert.Equal(t, "<|img|><|imgpad|><|endofimg|>Extract.", parts[1].Text)
}

func TestDotsClient_RetriesTransientErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer ts.Close()

	c, err := NewDotsClient(types.OCRConfig{BaseURL: ts.URL, APIKey: "k"}, nil)
	require.NoError(t, err)
	c.policy.BaseDelay = time.Millisecond

	text, err := c.Recognize(context.Background(), Page{Image: []byte("x")}, "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDotsClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "client error", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, want: "status 401"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: "no choices"},
		{name: "bad json", status: http.StatusOK, body: `<html>`, want: "unmarshaling"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c, err := NewDotsClient(types.OCRConfig{BaseURL: ts.URL, APIKey: "k", MaxAttempts: 1}, nil)
			require.NoError(t, err)
			_, err = c.Recognize(context.Background(), Page{Image: []byte("x")}, "p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
