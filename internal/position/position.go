// Package position implements the two-part task position key.
//
// A position is an integer order optionally followed by one lowercase slot
// letter: "3" is the serial task at order 3, "3a" is slot a of the parallel
// group at order 3. The canonical string form doubles as the folder prefix
// and the config key.
package position

import (
	"strconv"
	"strings"

	"github.com/roach88/mo/internal/diag"
)

// Position identifies a task within the ordered sequence.
type Position struct {
	// Order is the group number, 1-based once the sequence is validated.
	Order int

	// Slot is the parallel slot letter, or "" for a serial position.
	Slot string
}

// Serial returns the serial position at order.
func Serial(order int) Position {
	return Position{Order: order}
}

// Parallel returns slot at order.
func Parallel(order int, slot string) Position {
	return Position{Order: order, Slot: slot}
}

// Parse splits leading digits from a trailing slot letter.
//
// Fails with MalformedPosition when there is no leading digit, when the order
// has a leading zero, or when the trailer is anything other than a single
// lowercase letter.
func Parse(s string) (Position, error) {
	digits, rest := splitDigits(s)
	if digits == "" {
		return Position{}, diag.New(diag.MalformedPosition, "position %q must start with a number", s).At(s)
	}
	if len(digits) > 1 && digits[0] == '0' {
		return Position{}, diag.New(diag.MalformedPosition, "position %q has a leading zero", s).At(s)
	}
	if rest != "" && !IsSlot(rest) {
		return Position{}, diag.New(diag.MalformedPosition, "position %q must end in at most one lowercase letter", s).At(s)
	}

	order, err := strconv.Atoi(digits)
	if err != nil {
		return Position{}, diag.Wrap(diag.MalformedPosition, err, "position %q order is not a valid integer", s).At(s)
	}
	return Position{Order: order, Slot: rest}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// constant tables.
func MustParse(s string) Position {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the canonical form: order followed by the slot, if any.
func (p Position) String() string {
	return strconv.Itoa(p.Order) + p.Slot
}

// IsParallel reports whether the position names a parallel slot.
func (p Position) IsParallel() bool {
	return p.Slot != ""
}

// WithOrder returns p moved to order, keeping its slot.
func (p Position) WithOrder(order int) Position {
	return Position{Order: order, Slot: p.Slot}
}

// Compare orders two positions.
//
// Positions compare by order first. At equal order, slots compare
// alphabetically. A serial position and a parallel slot at the same order are
// incomparable, since an order hosts either one serial task or a set of
// parallel ones; ok is false in that case.
func Compare(a, b Position) (cmp int, ok bool) {
	switch {
	case a.Order < b.Order:
		return -1, true
	case a.Order > b.Order:
		return 1, true
	case a.IsParallel() != b.IsParallel():
		return 0, false
	default:
		return strings.Compare(a.Slot, b.Slot), true
	}
}

// IsSlot reports whether s is a single lowercase ASCII letter.
func IsSlot(s string) bool {
	return len(s) == 1 && s[0] >= 'a' && s[0] <= 'z'
}

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}
