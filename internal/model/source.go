package model

// Source is a reference supporting a submission. IsValid is derived from
// syntactic URL validation, never set independently.
type Source struct {
	ID          string `json:"id,omitempty"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsValid     bool   `json:"is_valid"`
}
