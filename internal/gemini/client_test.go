package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(ClientConfig{Endpoint: srv.URL, HTTPClient: srv.Client()})
	return client, srv
}

func TestGenerate_RequiresAPIKey(t *testing.T) {
	called := false
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	defer srv.Close()

	_, err := client.Generate(context.Background(), "", "gemini-2.0-flash", nil)
	require.ErrorIs(t, err, ErrNoAPIKey)
	require.False(t, called)
}

func TestGenerate_SuccessReturnsFirstCandidateText(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		require.Equal(t, "k", r.URL.Query().Get("key"))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`))
	})
	defer srv.Close()

	text, err := client.GenerateParts(context.Background(), "k", "gemini-2.0-flash", []Part{{Text: "hi"}})
	require.NoError(t, err)
	require.Equal(t, "hello", text)
}

func TestRequestURL_ModelsPrefixNotDuplicated(t *testing.T) {
	client := NewClient(ClientConfig{Endpoint: "https://example.com"})
	require.Equal(t,
		"https://example.com/v1beta/models/gemini-2.5-pro:generateContent?key=k",
		client.requestURL("models/gemini-2.5-pro", "k"))
	require.Equal(t,
		"https://example.com/v1beta/models/gemini-2.5-pro:generateContent?key=k",
		client.requestURL("gemini-2.5-pro", "k"))
}

func TestGenerate_NonOKUsesErrorBodyMessage(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	})
	defer srv.Close()

	_, err := client.GenerateParts(context.Background(), "k", "m", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "API key not valid", apiErr.Message)
}

func TestGenerate_NonOKFallsBackToRawBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`upstream exploded`))
	})
	defer srv.Close()

	_, err := client.GenerateParts(context.Background(), "k", "m", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "upstream exploded", apiErr.Message)
}

func TestGenerate_BlockReasonWinsOverFinishReason(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"finishReason":"SAFETY","content":{}}],"promptFeedback":{"blockReason":"SAFETY"}}`))
	})
	defer srv.Close()

	_, err := client.GenerateParts(context.Background(), "k", "m", nil)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "SAFETY", rejected.Reason)
}

func TestGenerate_AbnormalFinishReason(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"finishReason":"MAX_TOKENS"}]}`))
	})
	defer srv.Close()

	_, err := client.GenerateParts(context.Background(), "k", "m", nil)
	var terminated *TerminatedError
	require.ErrorAs(t, err, &terminated)
	require.Equal(t, "MAX_TOKENS", terminated.Reason)
}

func TestGenerate_NormalStopWithoutTextIsMalformed(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"finishReason":"STOP"}]}`))
	})
	defer srv.Close()

	_, err := client.GenerateParts(context.Background(), "k", "m", nil)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerate_EmptyBodyIsMalformed(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	_, err := client.GenerateParts(context.Background(), "k", "m", nil)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerate_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(ClientConfig{Endpoint: srv.URL})

	_, err := client.GenerateParts(context.Background(), "k", "m", nil)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestGenerate_CustomStopSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"finishReason":"DONE"}]}`))
	}))
	defer srv.Close()
	client := NewClient(ClientConfig{Endpoint: srv.URL, StopSentinel: "DONE", HTTPClient: srv.Client()})

	_, err := client.GenerateParts(context.Background(), "k", "m", nil)
	require.ErrorIs(t, err, ErrMalformedResponse)
}
