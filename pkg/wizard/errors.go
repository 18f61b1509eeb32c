package wizard

import "errors"

var (
	// ErrUnknownMode is returned when a mode outside the two defined
	// reporting modes is selected.
	ErrUnknownMode = errors.New("unknown reporting mode")

	// ErrModeLocked is returned when the reporting mode would change after
	// any step beyond mode selection has been visited; backing up to the
	// first step does not unlock it.
	ErrModeLocked = errors.New("reporting mode is locked once past step 1")

	// ErrAttachmentIndex is returned by RemoveAttachment for an index
	// outside the current attachment list.
	ErrAttachmentIndex = errors.New("attachment index out of range")

	// ErrSubmissionInFlight is returned when Submit is called while an
	// earlier submission of the same draft has not resolved yet.
	ErrSubmissionInFlight = errors.New("submission already in flight")

	// ErrAlreadySubmitted is returned for any mutation attempted after the
	// draft reached the terminal submitted state.
	ErrAlreadySubmitted = errors.New("report already submitted")

	// ErrDraftUnsaveable is returned when a draft that has not chosen a
	// reporting mode would be persisted beyond the first step.
	ErrDraftUnsaveable = errors.New("draft without a reporting mode cannot be saved past step 1")
)
