package domain

// RetrievedChunk is a single retrieval hit: the stored chunk text and its
// L2 distance from the query vector (smaller is closer).
type RetrievedChunk struct {
	Text     string
	Distance float32
}

// QueryResult is the outcome of one question against a tenant's knowledge base.
//
// SimilarityScore is the cosine similarity between the question embedding and
// the top retrieved chunk embedding, scaled to 0-100. ModelConfidence is the
// generative model's self-reported certainty, 0-100, zero when its output
// could not be parsed. The two are deliberately independent signals.
type QueryResult struct {
	Answer          string
	SimilarityScore float64
	ModelConfidence float64
	Chunks          []RetrievedChunk
}

// NoDocumentsAnswer is returned when a tenant has no knowledge base yet.
// An expected first-use state, not an error.
const NoDocumentsAnswer = "No documents found. Please upload something first."
