package grounder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, WithAPIKey("secret"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestNew_InvalidBaseURL(t *testing.T) {
	if _, err := New("not a url"); err == nil {
		t.Fatal("expected error for invalid base url")
	}
}

func TestIngest(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/tenants/alice/documents" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q, want bearer token", got)
		}

		var req ingestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Text != "some text" {
			t.Errorf("text = %q", req.Text)
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(IngestResult{ChunksAdded: 2, TotalChunks: 5, Tokens: 12})
	})

	res, err := client.Tenant("alice").Ingest(context.Background(), "some text")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.ChunksAdded != 2 || res.TotalChunks != 5 || res.Tokens != 12 {
		t.Errorf("result = %+v", res)
	}
}

func TestAsk(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tenants/alice/ask" {
			t.Errorf("path = %s", r.URL.Path)
		}

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Question != "why?" || req.TopK != 5 {
			t.Errorf("request = %+v", req)
		}

		_ = json.NewEncoder(w).Encode(Answer{
			Answer:          "because",
			SimilarityScore: 83.5,
			ModelConfidence: 90,
			Chunks:          []Chunk{{Text: "because of reasons", Distance: 0.1}},
		})
	})

	ans, err := client.Tenant("alice").Ask(context.Background(), "why?", 5)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if ans.Answer != "because" || ans.ModelConfidence != 90 {
		t.Errorf("answer = %+v", ans)
	}
	if len(ans.Chunks) != 1 || ans.Chunks[0].Text != "because of reasons" {
		t.Errorf("chunks = %+v", ans.Chunks)
	}
}

func TestClear(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/tenants/alice/documents" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.Tenant("alice").Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
}

func TestStats(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tenants/alice/stats" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Stats{Exists: true, Chunks: 7, Dimension: 1536})
	})

	st, err := client.Tenant("alice").Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !st.Exists || st.Chunks != 7 || st.Dimension != 1536 {
		t.Errorf("stats = %+v", st)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		code     string
		status   int
		sentinel error
	}{
		{"invalid_tenant_id", http.StatusBadRequest, ErrInvalidTenantID},
		{"vector_dim_mismatch", http.StatusConflict, ErrVectorDimMismatch},
		{"index_corrupted", http.StatusInternalServerError, ErrIndexCorrupted},
		{"embedding_provider_error", http.StatusBadGateway, ErrEmbeddingProviderError},
		{"generation_provider_error", http.StatusBadGateway, ErrGenerationProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    tt.code,
					"message": "boom",
				})
			})

			_, err := client.Tenant("alice").Ask(context.Background(), "q?", 0)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != "boom" {
				t.Errorf("api error = %+v", apiErr)
			}
		})
	}
}

func TestErrorNonJSONBody(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	})

	_, err := client.Tenant("alice").Stats(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Code != "unknown" {
		t.Errorf("code = %q, want unknown", apiErr.Code)
	}
}

func TestTenantPathEscaping(t *testing.T) {
	var gotPath string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	})

	_ = client.Tenant("a b").Clear(context.Background())

	if gotPath != "/v1/tenants/a%20b/documents" {
		t.Errorf("path = %q, want escaped tenant id", gotPath)
	}
}

func TestHealth_Degraded(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status: "degraded",
			Checks: map[string]string{"store": "ok", "embedding": "error"},
		})
	})

	hs, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if hs.Status != "degraded" || hs.Checks["embedding"] != "error" {
		t.Errorf("health = %+v", hs)
	}
}
