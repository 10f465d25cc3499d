package docai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnpath/backend/config"
	pkgerrors "learnpath/backend/pkg/errors"
)

func newTestClient(endpoint string, maxAttempts int) *Client {
	return NewClient(&config.DocAIConfig{
		Endpoint:      endpoint,
		APIKey:        "ocr-key",
		ReadVersion:   "v4.0",
		LayoutVersion: "2023-07-31",
		PollInterval:  time.Millisecond,
		MaxAttempts:   maxAttempts,
		MaxBackoff:    4 * time.Millisecond,
		Timeout:       5 * time.Second,
	}, zap.NewNop())
}

func TestReadLines_FallsBackToV32(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/vision/v4.0/read/analyze", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/vision/v3.2/read/analyze", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ocr-key", r.Header.Get(subscriptionHeader))
		w.Header().Set("Operation-Location", srv.URL+"/operations/1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/operations/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&polls, 1) < 2 {
			_, _ = io.WriteString(w, `{"status":"running"}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":"succeeded","analyzeResult":{"readResults":[
			{"lines":[{"text":"Unit 1: Algebra"},{"text":"  "}]},
			{"lines":[{"text":"Unit 2: Calculus"}]}
		]}}`)
	})

	lines, err := newTestClient(srv.URL, 5).ReadLines(context.Background(), "https://img.test/syllabus.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"Unit 1: Algebra", "Unit 2: Calculus"}, lines)
	assert.EqualValues(t, 2, atomic.LoadInt32(&polls))
}

func TestAnalyzeLayout(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/formrecognizer/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		assert.Equal(t, "2023-07-31", r.URL.Query().Get("api-version"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "%PDF-1.4", string(body))
		w.Header().Set("Operation-Location", srv.URL+"/results/7")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/results/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"succeeded","analyzeResult":{"content":"1. What is a ring?"}}`)
	})

	content, err := newTestClient(srv.URL, 3).AnalyzeLayout(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "1. What is a ring?", content)
}

func TestAnalyzeLayout_Errors(t *testing.T) {
	t.Run("submit rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, "bad key")
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, 3).AnalyzeLayout(context.Background(), []byte("x"))

		var upstream *pkgerrors.UpstreamServiceError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	})

	t.Run("job failed", func(t *testing.T) {
		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()
		mux.HandleFunc("/formrecognizer/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Operation-Location", srv.URL+"/results/1")
			w.WriteHeader(http.StatusAccepted)
		})
		mux.HandleFunc("/results/1", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"failed"}`)
		})

		_, err := newTestClient(srv.URL, 3).AnalyzeLayout(context.Background(), []byte("x"))
		assert.Equal(t, pkgerrors.KindUpstream, pkgerrors.KindOf(err))
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		var polls int32
		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()
		mux.HandleFunc("/formrecognizer/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Operation-Location", srv.URL+"/results/1")
			w.WriteHeader(http.StatusAccepted)
		})
		mux.HandleFunc("/results/1", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&polls, 1)
			_, _ = io.WriteString(w, `{"status":"running"}`)
		})

		_, err := newTestClient(srv.URL, 3).AnalyzeLayout(context.Background(), []byte("x"))

		var timeout *pkgerrors.TimeoutError
		require.True(t, errors.As(err, &timeout))
		assert.Equal(t, 3, timeout.Attempts)
		assert.EqualValues(t, 3, atomic.LoadInt32(&polls))
	})
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()
	c := newTestClient(endpoint, 3)

	_, err := c.AnalyzeLayout(context.Background(), []byte("x"))
	var upstream *pkgerrors.UpstreamServiceError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 0, upstream.StatusCode)

	// v4.0 与 v3.2 回退都不可达
	_, err = c.ReadLines(context.Background(), "https://img.test/a.png")
	assert.Equal(t, pkgerrors.KindUpstream, pkgerrors.KindOf(err))
}

func TestBackoff(t *testing.T) {
	c := &Client{interval: time.Second, maxBackoff: 5 * time.Second}

	assert.Equal(t, time.Second, c.backoff(0))
	assert.Equal(t, 2*time.Second, c.backoff(1))
	assert.Equal(t, 4*time.Second, c.backoff(2))
	assert.Equal(t, 5*time.Second, c.backoff(3))
	assert.Equal(t, 5*time.Second, c.backoff(80))
}
