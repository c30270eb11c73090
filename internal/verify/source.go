package verify

import (
	"net/url"
	"strings"

	"github.com/onlyfringe/onlyfringe/internal/model"
)

// SourceCheck is the structural verdict on a single reference. No
// network I/O is performed; reachability is not this layer's concern.
type SourceCheck struct {
	URLValid       bool
	HasTitle       bool
	HasDescription bool
}

func (c SourceCheck) OK() bool {
	return c.URLValid && c.HasTitle && c.HasDescription
}

func (c SourceCheck) problems() []string {
	var out []string
	if !c.URLValid {
		out = append(out, "url is not a well-formed http(s) URL")
	}
	if !c.HasTitle {
		out = append(out, "title is empty")
	}
	if !c.HasDescription {
		out = append(out, "description is empty")
	}
	return out
}

// CheckSource validates one source structurally.
func CheckSource(src model.Source) SourceCheck {
	return SourceCheck{
		URLValid:       validURL(src.URL),
		HasTitle:       strings.TrimSpace(src.Title) != "",
		HasDescription: strings.TrimSpace(src.Description) != "",
	}
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
