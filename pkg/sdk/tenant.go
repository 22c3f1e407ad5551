package grounder

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Tenant is a handle to one tenant's knowledge base.
type Tenant struct {
	client *Client
	id     string
}

// Ingest uploads raw text: it is chunked, embedded, and appended to the
// knowledge base. Repeated calls accumulate.
func (t *Tenant) Ingest(ctx context.Context, text string) (IngestResult, error) {
	var out IngestResult
	err := t.client.do(ctx, http.MethodPost, t.path("documents"),
		ingestRequest{Text: text}, &out)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest: %w", err)
	}
	return out, nil
}

// Ask answers a question strictly from the tenant's knowledge base.
// topK overrides how many chunks are retrieved; 0 uses the server default.
func (t *Tenant) Ask(ctx context.Context, question string, topK int) (Answer, error) {
	var out Answer
	err := t.client.do(ctx, http.MethodPost, t.path("ask"),
		askRequest{Question: question, TopK: topK}, &out)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return out, nil
}

// Clear removes the tenant's knowledge base. Idempotent.
func (t *Tenant) Clear(ctx context.Context) error {
	if err := t.client.do(ctx, http.MethodDelete, t.path("documents"), nil, nil); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Stats reports the knowledge base size and vector dimension.
func (t *Tenant) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	if err := t.client.do(ctx, http.MethodGet, t.path("stats"), nil, &out); err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return out, nil
}

func (t *Tenant) path(suffix string) string {
	return "/v1/tenants/" + url.PathEscape(t.id) + "/" + suffix
}
