package types

import "errors"

var (
	ErrItemNotFound   = errors.New("intake item not found")
	ErrMemberNotFound = errors.New("household member not found")
	ErrFileNotFound   = errors.New("stored file not found")

	// ErrItemTerminal is returned when a disposition is attempted on an item
	// that already reached accepted or dismissed.
	ErrItemTerminal = errors.New("intake item already finalized")

	// ErrAnalysisInProgress is returned when a second analyze call races an
	// item that is already mid-analysis.
	ErrAnalysisInProgress = errors.New("analysis already in progress")

	// ErrRevisionConflict is returned by stores when an optimistic update
	// loses the compare-and-swap on the item revision.
	ErrRevisionConflict = errors.New("intake item revision conflict")

	// ErrItemActive is returned when purge is attempted on an item that has
	// not been dismissed.
	ErrItemActive = errors.New("intake item is not dismissed")

	ErrValidation = errors.New("validation failed")
)
