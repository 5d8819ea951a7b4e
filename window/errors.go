package window

import "errors"

// Named error kinds, per spec.md §6/§7. Callers test with errors.Is.
var (
	ErrInvalidRegion        = errors.New("window: invalid region")
	ErrWindowNotFound       = errors.New("window: not found")
	ErrOSFailure            = errors.New("window: OS rect read failed")
	ErrDPIUnavailable       = errors.New("window: DPI unavailable")
	ErrEnumFailed           = errors.New("window: enumeration failed")
	ErrClassNameUnavailable = errors.New("window: class name unavailable")
	ErrProcessIDUnavailable = errors.New("window: process id unavailable")
	ErrStyleUnavailable     = errors.New("window: style unavailable")
)
