// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"text/template"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/talent-scout/pkg/types"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// failNTimes fails the first n calls, then replies.
type failNTimes struct {
	n     int
	calls int
	reply string
}

func (f *failNTimes) Complete(context.Context, string) (string, error) {
	f.calls++
	if f.calls <= f.n {
		return "", fmt.Errorf("transient error (call %d)", f.calls)
	}
	return f.reply, nil
}

// --- Raw ---

func TestRawRetry(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		maxRetries int
		wantErr    bool
		wantCalls  int
	}{
		{"succeeds first try", 0, 2, false, 1},
		{"succeeds after failures", 2, 2, false, 3},
		{"fails after exhausting retries", 3, 2, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &failNTimes{n: tt.failures, reply: "ok"}
			c := New(m, types.AIConfig{MaxRetries: tt.maxRetries}, zaptest.NewLogger(t))
			got, err := c.Raw(context.Background(), "p")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "ok", got)
			}
			assert.Equal(t, tt.wantCalls, m.calls)
		})
	}
}

func TestRawTruncatesReply(t *testing.T) {
	m := ModelFunc(func(context.Context, string) (string, error) { return strings.Repeat("x", 100), nil })
	c := New(m, types.AIConfig{MaxResponseBytes: 10}, zaptest.NewLogger(t))
	got, err := c.Raw(context.Background(), "p")
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestRawTimeout(t *testing.T) {
	m := ModelFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	c := New(m, types.AIConfig{Timeout: 5 * time.Millisecond}, zaptest.NewLogger(t))
	_, err := c.Raw(context.Background(), "p")
	assert.Error(t, err)
}

func TestRawNilClient(t *testing.T) {
	var c *Client
	_, err := c.Raw(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestNewFromConfig(t *testing.T) {
	log := zaptest.NewLogger(t)
	assert.Nil(t, NewFromConfig(types.AIConfig{Provider: types.ProviderNone}, log))
	assert.Nil(t, NewFromConfig(types.AIConfig{Provider: types.ProviderAnthropic}, log))
	assert.NotNil(t, NewFromConfig(types.AIConfig{Provider: types.ProviderAnthropic, APIKey: "k"}, log))
	assert.NotNil(t, NewFromConfig(types.AIConfig{Provider: types.ProviderOpenAI, BaseURL: "http://localhost:8000/v1"}, log))
}

// --- backends ---

func TestClaudeBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, defaultMaxTokens, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "hello", req.Messages[0].Content)

		fmt.Fprint(w, `{"content": [{"type": "thinking", "text": ""}, {"type": "text", "text": "{\"a\": 1}"}]}`)
	}))
	defer srv.Close()

	orig := claudeAPIURL
	claudeAPIURL = srv.URL
	defer func() { claudeAPIURL = orig }()

	b := &ClaudeBackend{APIKey: "test-key", Model: "test-model"}
	got, err := b.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)
}

func TestClaudeBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := &ClaudeBackend{APIKey: "k", Model: "m", BaseURL: srv.URL}
	_, err := b.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestOpenAIBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "reply"}}]}`)
	}))
	defer srv.Close()

	b := &OpenAIBackend{APIKey: "sk-test", Model: "gpt", BaseURL: srv.URL}
	got, err := b.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "reply", got)
}

func TestOpenAIBackendNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer srv.Close()

	b := &OpenAIBackend{Model: "local", BaseURL: srv.URL + "/"}
	_, err := b.Complete(context.Background(), "hello")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	tmpl := template.Must(template.New("greet").Parse("hi {{.Name}}"))
	got, err := Render(tmpl, struct{ Name string }{"Ada"})
	require.NoError(t, err)
	assert.Equal(t, "hi Ada", got)

	bad := template.Must(template.New("bad").Parse("{{.Missing.Field}}"))
	_, err = Render(bad, struct{}{})
	assert.Error(t, err)
}
