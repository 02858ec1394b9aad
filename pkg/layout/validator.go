// validator.go — Validate layouts and themes before they enter a registry.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports an unknown layout or theme identifier.
type NotFoundError struct {
	Kind string // "layout" or "theme"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) work.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError lists every problem found in one layout or theme.
type ValidationError struct {
	ID       string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %q: %s", e.ID, strings.Join(e.Problems, "; "))
}

// Validate checks the canvas dimensions and that every slot lies inside
// the canvas. Slot overlap is allowed.
func Validate(spec Spec) error {
	var problems []string

	if spec.ID == "" {
		problems = append(problems, "missing id")
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		problems = append(problems, fmt.Sprintf("canvas %dx%d must be positive", spec.Width, spec.Height))
	}
	if len(spec.Slots) == 0 {
		problems = append(problems, "no slots")
	}

	for i, s := range spec.Slots {
		if s.Index != i {
			problems = append(problems, fmt.Sprintf("slot %d: index %d out of order", i, s.Index))
		}
		if s.Width <= 0 || s.Height <= 0 {
			problems = append(problems, fmt.Sprintf("slot %d: size %dx%d must be positive", i, s.Width, s.Height))
			continue
		}
		if s.X < 0 || s.Y < 0 {
			problems = append(problems, fmt.Sprintf("slot %d: origin (%d,%d) is negative", i, s.X, s.Y))
		}
		if s.X+s.Width > spec.Width {
			problems = append(problems, fmt.Sprintf("slot %d: right edge %d exceeds canvas width %d", i, s.X+s.Width, spec.Width))
		}
		if s.Y+s.Height > spec.Height {
			problems = append(problems, fmt.Sprintf("slot %d: bottom edge %d exceeds canvas height %d", i, s.Y+s.Height, spec.Height))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{ID: spec.ID, Problems: problems}
	}
	return nil
}

// validateTheme checks a theme against the layout it binds to.
func validateTheme(t Theme, spec Spec) error {
	var problems []string
	if t.ID == "" {
		problems = append(problems, "missing themeId")
	}
	if t.LayoutID != spec.ID {
		problems = append(problems, fmt.Sprintf("bound to layout %q, got %q", t.LayoutID, spec.ID))
	}
	if c := t.Caption; c != nil {
		if c.Width <= 0 || c.Height <= 0 {
			problems = append(problems, "caption box must have a positive size")
		} else if !c.Rect().In(spec.Bounds()) {
			problems = append(problems, fmt.Sprintf("caption box %v outside canvas %v", c.Rect(), spec.Bounds()))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{ID: t.ID, Problems: problems}
	}
	return nil
}
