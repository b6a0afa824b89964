package llm

// AskResponse is the body returned by the answer service on success.
// Answer is a pointer so that a missing field can be told apart from an
// empty answer.
type AskResponse struct {
	Answer *string `json:"answer"`
}
