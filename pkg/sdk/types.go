package grounder

type ingestRequest struct {
	Text string `json:"text"`
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// IngestResult reports what one upload added.
type IngestResult struct {
	ChunksAdded int `json:"chunks_added"`
	TotalChunks int `json:"total_chunks"`
	Tokens      int `json:"tokens"`
}

// Chunk is one retrieved piece of stored text.
// Distance is the L2 distance from the question vector, smaller is closer.
type Chunk struct {
	Text     string  `json:"text"`
	Distance float32 `json:"distance"`
}

// Answer is the outcome of one question.
//
// SimilarityScore (0-100) is the cosine similarity between the question and
// the top retrieved chunk: it measures whether anything relevant was found.
// ModelConfidence (0-100) is the model's self-report given that context, 0
// when the model's output could not be parsed.
type Answer struct {
	Answer          string  `json:"answer"`
	SimilarityScore float64 `json:"similarity_score"`
	ModelConfidence float64 `json:"model_confidence"`
	Chunks          []Chunk `json:"chunks"`
}

// Stats describes one tenant's knowledge base.
type Stats struct {
	Exists    bool `json:"exists"`
	Chunks    int  `json:"chunks"`
	Dimension int  `json:"dimension"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}
