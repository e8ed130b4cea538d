// Package store persists the content records the assistant answers from,
// using SQLite.
package store

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("content record not found")

// Record is one curated piece of knowledge about the site owner.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Section   string    `json:"section"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Tags      string    `json:"tags,omitempty"` // comma-joined
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagList splits the comma-joined tags, trimming blanks and dropping empties.
func (r Record) TagList() []string {
	if strings.TrimSpace(r.Tags) == "" {
		return nil
	}

	parts := strings.Split(r.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// JoinTags builds the stored tag string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
