package biometric

import "errors"

// Sentinel errors shared across the matching core and its callers. Handlers map
// these onto HTTP statuses; everything else wraps them with %w so errors.Is keeps
// working through the stack.
var (
	// ErrInsufficientFeatures indicates a capture too weak to use. Recoverable;
	// the caller should re-prompt for another capture.
	ErrInsufficientFeatures = errors.New("insufficient features in capture")

	// ErrDuplicateID indicates an enrollment id collision. The existing subject
	// and template are left untouched.
	ErrDuplicateID = errors.New("subject id already enrolled")

	// ErrNotFound indicates a lookup of an unknown subject or template.
	ErrNotFound = errors.New("subject not found")

	// ErrNoEnrolledSubjects indicates authentication against an empty gallery.
	ErrNoEnrolledSubjects = errors.New("no enrolled subjects")

	// ErrAcquisitionFailed indicates the acquisition collaborator could not
	// produce a usable image. Never silently treated as "no match".
	ErrAcquisitionFailed = errors.New("image acquisition failed")

	// ErrStoreCorrupt indicates persisted gallery or ledger data failed to
	// parse. Fatal for the affected operation; no auto-repair is attempted.
	ErrStoreCorrupt = errors.New("stored biometric data is corrupt")
)
