package engine

import "errors"

var (
	// ErrAccessDenied is returned when an action is attempted on
	// content the user has no entitlement to. Swallowed into a no-op
	// response at the HTTP boundary.
	ErrAccessDenied = errors.New("engine: access denied")

	// ErrInvalidTransition is returned for illegal state machine
	// moves (e.g. submitting a not-started assignment). Nothing is
	// mutated or persisted when it is returned.
	ErrInvalidTransition = errors.New("engine: invalid transition")

	// ErrSettlementFailed is the only engine error surfaced to the
	// end user; the flow parks in the error step until retried.
	ErrSettlementFailed = errors.New("engine: settlement failed")

	// ErrFlowActive rejects a duplicate enroll/purchase intent while
	// one is already processing for the same key.
	ErrFlowActive = errors.New("engine: a transaction is already processing")

	// ErrAlreadyEnrolled rejects starting an enrollment flow for a
	// course the user already owns.
	ErrAlreadyEnrolled = errors.New("engine: already enrolled")

	// ErrUnknownUnit is returned when a video or assignment id does
	// not belong to the course. Access checks fail closed on it.
	ErrUnknownUnit = errors.New("engine: unit not in course")
)
