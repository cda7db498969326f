package scopeview

import "errors"

var (
	// ErrParse means the frontend could not parse the source. The build is
	// skipped and the last good graph stays in place.
	ErrParse = errors.New("scopeview: parse failed")

	// ErrParserUnavailable means the Session has no usable frontend yet.
	ErrParserUnavailable = errors.New("scopeview: parser unavailable")

	// ErrStale means a newer edit or view change superseded the result.
	ErrStale = errors.New("scopeview: result superseded")
)
