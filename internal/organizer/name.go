package organizer

import (
	"strings"
	"unicode"

	"github.com/roach88/mo/internal/diag"
	"github.com/roach88/mo/internal/sequence"
)

// taskName normalises a user-supplied name and checks it can be used as the
// free-text part of a folder name.
func taskName(raw string) (string, error) {
	name := sequence.NormalizeName(strings.TrimSpace(raw))
	switch {
	case name == "":
		return "", diag.New(diag.InvalidName, "task name must not be empty")
	case name == "." || name == "..":
		return "", diag.New(diag.InvalidName, "task name %q is reserved", name).Named(name)
	case strings.ContainsAny(name, `/\`):
		return "", diag.New(diag.InvalidName, "task name %q must not contain path separators", name).Named(name)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return "", diag.New(diag.InvalidName, "task name %q must not contain control characters", name).Named(name)
	}
	return name, nil
}
