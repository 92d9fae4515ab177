package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siherrmann/caseweaver/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfiles() []*model.ParticipantProfile {
	return []*model.ParticipantProfile{
		{ID: "urn:role:engineer", Name: "Engineer", Motivations: []string{"protect public safety and welfare"}},
	}
}

func chatReply(t *testing.T, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(reply))
	}
}

func TestEnhance(t *testing.T) {
	ctx := context.Background()

	t.Run("Parses structured enhancement from JSON mode", func(t *testing.T) {
		content := `{"profiles": [{"id": "urn:role:engineer", "background": "A careful engineer", "character_arc": "Learns to speak up"}], "teaching_notes": ["Discuss duty to report"]}`
		server := httptest.NewServer(chatReply(t, content))
		defer server.Close()

		enricher := NewEnricher(Config{BaseURL: server.URL, Model: "test-model"})
		enhancement, err := enricher.Enhance(ctx, testProfiles(), map[string][]string{})
		require.NoError(t, err)
		require.Len(t, enhancement.Profiles, 1)
		assert.Equal(t, "urn:role:engineer", enhancement.Profiles[0].ID)
		assert.Equal(t, "A careful engineer", enhancement.Profiles[0].Background)
		assert.Equal(t, []string{"Discuss duty to report"}, enhancement.TeachingNotes)
	})

	t.Run("API key is sent as bearer token", func(t *testing.T) {
		var authorization string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization = r.Header.Get("Authorization")
			chatReply(t, `{"profiles": []}`)(w, r)
		}))
		defer server.Close()

		enricher := NewEnricher(Config{BaseURL: server.URL, APIKey: "secret", Model: "test-model"})
		_, err := enricher.Enhance(ctx, testProfiles(), nil)
		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", authorization)
	})

	t.Run("Non-200 status returns enrichment error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		enricher := NewEnricher(Config{BaseURL: server.URL, Model: "test-model"})
		_, err := enricher.Enhance(ctx, testProfiles(), nil)

		enrichmentError := &model.EnrichmentError{}
		require.ErrorAs(t, err, &enrichmentError)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("Unparsable content returns enrichment error", func(t *testing.T) {
		server := httptest.NewServer(chatReply(t, "this is not json"))
		defer server.Close()

		enricher := NewEnricher(Config{BaseURL: server.URL, Model: "test-model"})
		_, err := enricher.Enhance(ctx, testProfiles(), nil)

		enrichmentError := &model.EnrichmentError{}
		require.ErrorAs(t, err, &enrichmentError)
	})

	t.Run("Unreachable service returns enrichment error", func(t *testing.T) {
		enricher := NewEnricher(Config{BaseURL: "http://127.0.0.1:1", Model: "test-model"})
		_, err := enricher.Enhance(ctx, testProfiles(), nil)

		enrichmentError := &model.EnrichmentError{}
		require.ErrorAs(t, err, &enrichmentError)
	})

	t.Run("Empty choices returns enrichment error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"choices": []any{}}))
		}))
		defer server.Close()

		enricher := NewEnricher(Config{BaseURL: server.URL, Model: "test-model"})
		_, err := enricher.Enhance(ctx, testProfiles(), nil)

		enrichmentError := &model.EnrichmentError{}
		require.ErrorAs(t, err, &enrichmentError)
		assert.Contains(t, err.Error(), "no choices")
	})
}
