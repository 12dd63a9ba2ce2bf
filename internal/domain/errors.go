package domain

// Both kinds propagate to the caller unmodified; wrap them with %w and test
// with errors.Is.
var (
	ErrNotFound             = errString("not found")
	ErrInvalidConfiguration = errString("invalid configuration")
)

type errString string

func (e errString) Error() string { return string(e) }
