package verify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/onlyfringe/onlyfringe/internal/config"
	"github.com/onlyfringe/onlyfringe/internal/model"
)

// Constraints is the structural pre-check run before any oracle call.
// It is pure and reports every violation it finds, not just the first,
// so a submitter gets complete feedback in one round-trip.
type Constraints struct {
	MinContentLength int
	MaxContentLength int
	MinSources       int
}

func NewConstraints(cfg config.VerificationConfig) Constraints {
	return Constraints{
		MinContentLength: cfg.MinContentLength,
		MaxContentLength: cfg.MaxContentLength,
		MinSources:       cfg.MinSources,
	}
}

// Input carries the raw submission fields under check. For rebuttals the
// parent argument's status is resolved by the caller and passed in, so
// the checker itself stays side-effect free.
type Input struct {
	Kind    model.Kind
	Content string
	Sources []model.Source

	// Rebuttals only.
	ParentFound  bool
	ParentStatus model.Status
}

// Check returns all structural violations of in, in a stable order:
// content length, source count, per-source problems, rebuttal target.
func (c Constraints) Check(in Input) []Violation {
	var violations []Violation

	// Content length is counted in characters, not bytes.
	length := utf8.RuneCountInString(in.Content)
	if length < c.MinContentLength {
		violations = append(violations, Violation{
			Kind:        KindContentLengthInvalid,
			Message:     fmt.Sprintf("content is %d characters, minimum is %d", length, c.MinContentLength),
			SourceIndex: -1,
		})
	} else if length > c.MaxContentLength {
		violations = append(violations, Violation{
			Kind:        KindContentLengthInvalid,
			Message:     fmt.Sprintf("content is %d characters, maximum is %d", length, c.MaxContentLength),
			SourceIndex: -1,
		})
	}

	if len(in.Sources) < c.MinSources {
		violations = append(violations, Violation{
			Kind:        KindInsufficientSources,
			Message:     fmt.Sprintf("%d sources provided, at least %d required", len(in.Sources), c.MinSources),
			SourceIndex: -1,
		})
	}

	for i, src := range in.Sources {
		check := CheckSource(src)
		if !check.OK() {
			violations = append(violations, Violation{
				Kind:        KindInvalidSource,
				Message:     fmt.Sprintf("source %d: %s", i, strings.Join(check.problems(), ", ")),
				SourceIndex: i,
			})
		}
	}

	if in.Kind == model.KindRebuttal {
		if !in.ParentFound {
			violations = append(violations, Violation{
				Kind:        KindInvalidRebuttalTarget,
				Message:     "target argument does not exist",
				SourceIndex: -1,
			})
		} else if in.ParentStatus != model.StatusApproved {
			violations = append(violations, Violation{
				Kind:        KindInvalidRebuttalTarget,
				Message:     fmt.Sprintf("target argument is %s, only approved arguments can be rebutted", in.ParentStatus),
				SourceIndex: -1,
			})
		}
	}

	return violations
}
