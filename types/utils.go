package types

import "strings"

// String helps with making acquire outcomes more readable in logs and debug output.
func (s AcquireStatus) String() string {
	switch s {
	case AcquireGranted:
		return "Granted"
	case AcquireQueued:
		return "Queued"
	case AcquireAlreadyHeld:
		return "AlreadyHeld"
	default:
		return "Unknown"
	}
}

// IsValid checks if the status is one of the defined acquire outcomes.
func (s AcquireStatus) IsValid() bool {
	return s == AcquireGranted || s == AcquireQueued || s == AcquireAlreadyHeld
}

// NormalizeResource canonicalizes a resource name for comparison and
// storage: surrounding whitespace is trimmed and the name is case-folded.
// An empty result means the name is invalid.
func NormalizeResource(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameResource reports whether two resource names refer to the same
// connection under case-insensitive comparison.
func SameResource(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
