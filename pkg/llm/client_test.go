package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnpath/backend/config"
	pkgerrors "learnpath/backend/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestChatClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		assert.Equal(t, "/openai/deployments/gpt/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-15-preview", r.URL.Query().Get("api-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"[]"}}]}`)
	}))
	defer srv.Close()

	client := NewChatClient(&config.LLMConfig{
		Endpoint:    srv.URL,
		APIKey:      "secret",
		Deployment:  "gpt",
		APIVersion:  "2024-02-15-preview",
		MaxTokens:   100,
		Temperature: 0.2,
		Timeout:     5 * time.Second,
	})

	reply, err := client.Generate(context.Background(), "plan please")
	require.NoError(t, err)
	assert.Equal(t, "[]", reply)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "plan please", got.Messages[0].Content)
	assert.Equal(t, 100, got.MaxTokens)
}

func TestChatClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, `{"error":"rate limited"}`)
	}))
	defer srv.Close()

	client := NewChatClient(&config.LLMConfig{Endpoint: srv.URL, Timeout: 5 * time.Second})

	_, err := client.Generate(context.Background(), "x")

	var upstream *pkgerrors.UpstreamServiceError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "rate limited")
}

func TestChatClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client := NewChatClient(&config.LLMConfig{Endpoint: endpoint, Timeout: 5 * time.Second})

	_, err := client.Generate(context.Background(), "x")

	var upstream *pkgerrors.UpstreamServiceError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 0, upstream.StatusCode)
	assert.Equal(t, "llm", upstream.Service)
	assert.Equal(t, pkgerrors.KindUpstream, pkgerrors.KindOf(err))
}

func TestChatClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"choices":[]}`)
	}))
	defer srv.Close()

	client := NewChatClient(&config.LLMConfig{Endpoint: srv.URL, Timeout: 5 * time.Second})

	_, err := client.Generate(context.Background(), "x")
	assert.Equal(t, pkgerrors.KindResponseFormat, pkgerrors.KindOf(err))
}

func TestQuestionClassifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))

		var req zeroShotRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"question", "metadata"}, req.Parameters.CandidateLabels)

		if req.Inputs == "Time allowed: 3 hours" {
			writeJSON(w, http.StatusOK, `{"labels":["metadata","question"],"scores":[0.9,0.1]}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"labels":["question","metadata"],"scores":[0.85,0.15]}`)
	}))
	defer srv.Close()

	c := NewQuestionClassifier(&config.ClassifierConfig{Endpoint: srv.URL, APIKey: "hf-key", Threshold: 0.7, Timeout: 5 * time.Second})

	ok, err := c.IsQuestion(context.Background(), "1. Define a vector space.")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsQuestion(context.Background(), "Time allowed: 3 hours")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuestionClassifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c := NewQuestionClassifier(&config.ClassifierConfig{Endpoint: endpoint, Threshold: 0.7, Timeout: 5 * time.Second})

	_, err := c.IsQuestion(context.Background(), "1. Define a ring.")
	assert.Equal(t, pkgerrors.KindUpstream, pkgerrors.KindOf(err))
}

func TestNewQuestionClassifier_Disabled(t *testing.T) {
	assert.Nil(t, NewQuestionClassifier(&config.ClassifierConfig{}))
}
