package domain

import "time"

// Target is everything needed to open a store against one remote base path.
type Target struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// StateResult is the outcome of a read. Found is false when the remote store
// has no entry under Name; that case is not an error.
type StateResult struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
	State string `json:"state,omitempty"`
}
