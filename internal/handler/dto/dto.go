// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse acknowledges an operation with no payload, such as a delete.
type OKResponse struct {
	OK bool `json:"ok"`
}
