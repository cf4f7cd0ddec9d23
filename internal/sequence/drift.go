package sequence

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Drift describes how a folder's free-text name relates to the configured
// task name.
type Drift string

const (
	// DriftNone means the folder carries exactly the configured name.
	DriftNone Drift = ""

	// DriftVariant means the names match after compatibility normalisation
	// and case folding ("Café" vs "café", "Prep" vs "prep").
	DriftVariant Drift = "variant"

	// DriftRenamed means the folder carries a different name altogether.
	DriftRenamed Drift = "renamed"
)

// NormalizeName returns the canonical NFC form used for new task names.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

func classify(configured, onDisk string) Drift {
	if configured == onDisk {
		return DriftNone
	}
	if foldName(configured) == foldName(onDisk) {
		return DriftVariant
	}
	return DriftRenamed
}

func foldName(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}
