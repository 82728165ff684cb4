// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"
)

// Envelope is the uniform response shape of the API.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    any         `json:"data,omitempty"`
	Errors  []ErrorItem `json:"errors,omitempty"`
}

// ErrorItem is one entry of the errors list in a failed envelope.
type ErrorItem struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Fail builds a failed envelope.
func Fail(message string, errors ...ErrorItem) Envelope {
	return Envelope{Success: false, Message: message, Errors: errors}
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Common Filters ---

// ListQuery contains common list query parameters.
type ListQuery struct {
	Search   string     `form:"search"`
	Status   string     `form:"status"`
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02"`
	OrderBy  string     `form:"orderBy"`
	Limit    int        `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset   int        `form:"offset" binding:"omitempty,min=0"`
}
