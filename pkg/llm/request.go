package llm

// AskRequest is the body POSTed to the answer service.
type AskRequest struct {
	Query string `json:"query"` // Free-form user question
}
