package models

import (
	"time"
)

type ContextKey string

const (
	RequesterIDKey ContextKey = "requester_id"
)

// Pagination defaults shared by every list endpoint.
const (
	DefaultPageSize int64 = 20
	MaxPageSize     int64 = 100
)

// PageRequest carries page/limit query parameters after normalization.
type PageRequest struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

// Normalize clamps the request into the allowed window.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Skip returns the number of documents to skip for this page.
func (p PageRequest) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// PagedResult wraps a page of items with the total match count.
type PagedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

type Log struct {
	Message      string    `bson:"message" json:"message"`
	IpAddress    string    `bson:"ip_address" json:"ip_address"` // Actual IP
	CustomerId   int       `bson:"customer_id" json:"customer_id"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
