// Package grounder provides a Go client for the grounder
// retrieval-augmented question answering service.
//
// Each tenant owns an isolated knowledge base. Upload raw text, then ask
// questions answered strictly from what was uploaded:
//
//	client, _ := grounder.New("http://localhost:8080",
//	    grounder.WithAPIKey("secret"),
//	)
//	kb := client.Tenant("alice")
//	_, _ = kb.Ingest(ctx, "The warranty period is 24 months from purchase.")
//	answer, _ := kb.Ask(ctx, "How long is the warranty?", 0)
//	fmt.Println(answer.Answer, answer.ModelConfidence)
//
// Answers carry two independent confidence signals: SimilarityScore measures
// whether anything relevant was retrieved, ModelConfidence is the model's own
// self-report given that retrieval.
package grounder
