package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/angelsearch/internal/domain"
)

func TestParseRanking(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []int
		wantErr bool
	}{
		{name: "valid", content: `{"ranking": [2, 0, 1]}`, want: []int{2, 0, 1}},
		{name: "not json", content: `most relevant is profile 2`, wantErr: true},
		{name: "bare array", content: `[2, 0, 1]`, wantErr: true},
		{name: "wrong key", content: `{"ranked_indices": [1, 0]}`, wantErr: true},
		{name: "empty ranking", content: `{"ranking": []}`, wantErr: true},
		{name: "non-integer elements", content: `{"ranking": ["a", "b"]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRanking(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, domain.ErrRerankProviderError) {
					t.Errorf("err = %v, want ErrRerankProviderError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRank_RequestErrorKeepsCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "model overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	oracle := NewReranker(&RerankerConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "gpt-4o-mini",
		Logger:  zap.NewNop(),
	})

	_, err := oracle.Rank(context.Background(), "q", []string{"summary A"})
	if !errors.Is(err, domain.ErrRerankProviderError) {
		t.Fatalf("err = %v, want ErrRerankProviderError", err)
	}
	// The fail-open warn log needs the underlying cause, not just the sentinel.
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("err = %q, want underlying status preserved", err)
	}
}

func TestBuildPrompt_NumbersCandidatesZeroBased(t *testing.T) {
	prompt := buildPrompt("fintech angels", []string{"summary A", "summary B"})

	if !strings.Contains(prompt, "User Query: fintech angels") {
		t.Error("prompt missing query")
	}
	if !strings.Contains(prompt, "Profile 0:\nsummary A") {
		t.Error("prompt missing first candidate with 0-based label")
	}
	if !strings.Contains(prompt, "Profile 1:\nsummary B") {
		t.Error("prompt missing second candidate")
	}
	if !strings.Contains(prompt, `{"ranking"`) {
		t.Error("prompt missing response schema example")
	}
}
