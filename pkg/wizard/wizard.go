package wizard

import (
	"context"
	"fmt"
	"sync/atomic"
)

// ValidationError carries a failed step check out of Submit. Step validation
// during normal advancement stays a plain Result; this type only exists so a
// submission attempted with an incomplete draft fails loudly.
type ValidationError struct {
	Step   Step
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s: %s", e.Step, e.Reason)
}

// Wizard drives one draft through its step path: forward moves are gated by
// the step validator, backward moves are always permitted and never
// re-validate, and the terminal submitted state is reached only after the
// submission client reports success.
type Wizard struct {
	draft  *Draft
	store  *DraftStore
	client SubmissionClient
	open   AttachmentOpener

	inFlight  atomic.Bool
	submitted bool
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithAttachmentOpener overrides how attachment local references are read
// at assembly time.
func WithAttachmentOpener(open AttachmentOpener) Option {
	return func(w *Wizard) { w.open = open }
}

// New creates a wizard over a fresh draft.
func New(store *DraftStore, client SubmissionClient, opts ...Option) *Wizard {
	w := &Wizard{
		draft:  NewDraft(),
		store:  store,
		client: client,
		open:   openLocalFile,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Draft exposes the working draft for field edits and attachment changes.
func (w *Wizard) Draft() *Draft { return w.draft }

// Submitted reports whether the draft has reached the terminal state.
func (w *Wizard) Submitted() bool { return w.submitted }

// Resume replaces the working draft with a previously saved snapshot, if one
// exists. Returns false (keeping the fresh draft) when there is nothing
// usable to restore.
func (w *Wizard) Resume(ctx context.Context) bool {
	saved, found := w.store.Load(ctx)
	if !found {
		return false
	}
	w.draft = saved
	return true
}

// Position returns the 1-based current step index and its identifier.
func (w *Wizard) Position() (int, Step) {
	return w.draft.CurrentStep, StepAt(w.draft.Mode, w.draft.CurrentStep)
}

// TotalSteps returns the step count of the active mode's path.
func (w *Wizard) TotalSteps() int {
	return TotalSteps(w.draft.Mode)
}

// Next validates the current step and, if it passes, advances by one. On
// failure the step does not change and the reason is returned for display.
// The final step never advances further; submission is a separate action.
func (w *Wizard) Next() Result {
	if w.submitted {
		return fail("This report has already been submitted.")
	}

	idx, step := w.Position()
	res := Validate(step, w.draft)
	if !res.OK {
		return res
	}

	if idx < w.TotalSteps() {
		w.draft.CurrentStep = idx + 1
		if w.draft.CurrentStep > w.draft.FurthestStep {
			w.draft.FurthestStep = w.draft.CurrentStep
		}
	}
	return res
}

// Back moves one step backward without re-validating. Returns false from the
// first step; leaving the wizard entirely is the caller's concern.
func (w *Wizard) Back() bool {
	if w.draft.CurrentStep <= 1 {
		return false
	}
	w.draft.CurrentStep--
	return true
}

// SaveProgress snapshots the draft to the store. Callers surface a failure
// to the reporter so they know progress is not guaranteed saved; the wizard
// itself keeps running.
func (w *Wizard) SaveProgress(ctx context.Context) error {
	return w.store.Save(ctx, w.draft)
}

// Submit assembles and sends the completed draft. Exactly one submission may
// be in flight per draft: a second call during that window is rejected and
// should be treated as a no-op, not queued. On failure the draft and its
// saved snapshot are preserved so the reporter can retry explicitly; on
// success the saved snapshot is cleared and the wizard becomes terminal.
func (w *Wizard) Submit(ctx context.Context) (*Receipt, error) {
	if w.submitted {
		return nil, ErrAlreadySubmitted
	}
	if !w.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer w.inFlight.Store(false)

	for _, step := range Steps(w.draft.Mode) {
		if res := Validate(step, w.draft); !res.OK {
			return nil, &ValidationError{Step: step, Reason: res.Reason}
		}
	}

	payload, err := AssembleWith(w.draft, w.open)
	if err != nil {
		return nil, fmt.Errorf("assemble submission: %w", err)
	}

	receipt, err := w.client.Submit(ctx, payload)
	if err != nil {
		return nil, err
	}

	w.submitted = true
	if err := w.store.Clear(ctx); err != nil {
		// The report made it through; a stale snapshot is the lesser
		// problem and the next successful save or clear removes it.
		return receipt, nil
	}
	return receipt, nil
}
