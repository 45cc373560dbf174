package model

import (
	"errors"
	"time"
)

// Link maps a short code to its target URL. Target and code never change
// after creation; only VisitsCount moves, and only upward.
type Link struct {
	ID          int64     `db:"id" json:"id"`
	Target      string    `db:"target" json:"target"`
	Code        string    `db:"code" json:"code"`
	VisitsCount int64     `db:"visits_count" json:"visits_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Visit is one recorded redirect against a link.
type Visit struct {
	ID        int64     `db:"id" json:"id"`
	LinkID    int64     `db:"link_id" json:"link_id"`
	UTM       *string   `db:"utm" json:"utm,omitempty"`
	VisitedAt time.Time `db:"visited_at" json:"visited_at"`
}

var (
	// ErrNotFound is returned when no link exists for a short code.
	ErrNotFound = errors.New("link not found")
	// ErrCodeTaken is returned when a create races into an existing code.
	ErrCodeTaken = errors.New("short code already taken")
)
