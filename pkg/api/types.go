package api

// ExplainRequest is the body of POST /api/explain.
type ExplainRequest struct {
	Text string `json:"text"`
}

// ExplainResponse is returned by POST /api/explain. Explanation is null when
// the model call failed, in which case Error says why.
type ExplainResponse struct {
	Explanation *string `json:"explanation"`
	Error       string  `json:"error,omitempty"`
}

// Success builds a successful response.
func Success(explanation string) ExplainResponse {
	return ExplainResponse{Explanation: &explanation}
}

// Failure builds an error response.
func Failure(err error) ExplainResponse {
	return ExplainResponse{Error: err.Error()}
}

// PingResponse is returned by GET /api/ping.
type PingResponse struct {
	Status string `json:"status"`
}
