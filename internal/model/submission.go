package model

import "time"

// Kind discriminates the two submission types flowing through the
// verification pipeline.
type Kind string

const (
	KindArgument Kind = "argument"
	KindRebuttal Kind = "rebuttal"
)

// Argument is a fact-based claim open to rebuttal once approved.
type Argument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Status     Status   `json:"verification_status"`
	IsVerified bool     `json:"is_verified"`
	Verdict    *Verdict `json:"fact_check_result,omitempty"`

	Sources   []Source   `json:"sources"`
	Rebuttals []Rebuttal `json:"rebuttals,omitempty"`
}

// Rebuttal is a counter to an approved Argument.
type Rebuttal struct {
	ID         string    `json:"id"`
	ArgumentID string    `json:"argument_id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Status     Status   `json:"verification_status"`
	IsVerified bool     `json:"is_verified"`
	Verdict    *Verdict `json:"fact_check_result,omitempty"`

	Sources []Source `json:"sources"`
}
