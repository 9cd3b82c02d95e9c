// Package library exposes the shared resource shelf: links to recitations,
// tafsir material and study aids any signed-in member can browse.
package library

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("resource not found")

type Resource struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewResource struct {
	Title    string `json:"title" validate:"required"`
	Category string `json:"category"`
	URL      string `json:"url" validate:"required,url"`
}
