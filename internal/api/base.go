package api

import "time"

// DefaultBaseURL is the single source of truth for the default hub target.
const DefaultBaseURL = "http://localhost:8080"

// NewDefaultClient builds a client pointed at the default hub URL.
func NewDefaultClient(apiKey string, timeout ...time.Duration) *Client {
	return NewClient(DefaultBaseURL, apiKey, timeout...)
}
