package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	receipt  *Receipt
	err      error
	calls    int
	onSubmit func()
}

func (c *fakeClient) Submit(ctx context.Context, p *Payload) (*Receipt, error) {
	c.calls++
	if c.onSubmit != nil {
		c.onSubmit()
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.receipt, nil
}

func newTestWizard(client SubmissionClient) (*Wizard, *mapKV) {
	kv := newMapKV()
	store := NewDraftStore(kv, "")
	return New(store, client), kv
}

func fillIdentified(w *Wizard) {
	d := w.Draft()
	_ = d.SetMode(ModeIdentified)
	d.Identified.LastName = "Dela Cruz"
	d.Identified.FirstName = "Ana"
	d.Identified.Sex = "Female"
	d.Identified.Age = "22"
	d.Incident.IncidentTypes = []string{"RA 7877 - Sexual Harassment"}
	d.Incident.LatestIncidentDate = "01/15/2025"
	d.ConfirmAccuracy = true
	d.ConfirmConfidentiality = true
}

func TestStepBoundsInvariantAcrossTransitions(t *testing.T) {
	w, _ := newTestWizard(&fakeClient{})
	fillIdentified(w)

	check := func() {
		idx, _ := w.Position()
		assert.GreaterOrEqual(t, idx, 1)
		assert.LessOrEqual(t, idx, w.TotalSteps())
	}

	check()
	for i := 0; i < 10; i++ {
		w.Next()
		check()
	}
	for i := 0; i < 10; i++ {
		w.Back()
		check()
	}
}

func TestNextBlockedByValidation(t *testing.T) {
	w, _ := newTestWizard(&fakeClient{})
	d := w.Draft()
	require.NoError(t, d.SetMode(ModeAnonymous))

	res := w.Next()
	require.True(t, res.OK)
	idx, step := w.Position()
	assert.Equal(t, 2, idx)
	assert.Equal(t, StepReporterContext, step)

	// reporterRole empty: advancement is blocked, step unchanged.
	d.Anonymous.TUPRole = "student"
	res = w.Next()
	assert.False(t, res.OK)
	idx, _ = w.Position()
	assert.Equal(t, 2, idx)

	d.Anonymous.ReporterRole = "victim-survivor"
	res = w.Next()
	assert.True(t, res.OK)
	idx, _ = w.Position()
	assert.Equal(t, 3, idx)
}

func TestBackNeverRevalidates(t *testing.T) {
	w, _ := newTestWizard(&fakeClient{})
	d := w.Draft()
	require.NoError(t, d.SetMode(ModeAnonymous))
	d.Anonymous.ReporterRole = "witness"
	d.Anonymous.TUPRole = "staff"
	require.True(t, w.Next().OK)
	require.True(t, w.Next().OK)

	// Invalidate an earlier step, then walk back through it freely.
	d.Anonymous.ReporterRole = ""
	assert.True(t, w.Back())
	assert.True(t, w.Back())
	idx, _ := w.Position()
	assert.Equal(t, 1, idx)
	assert.False(t, w.Back())
}

func TestModeLockedAfterBackingUpToStepOne(t *testing.T) {
	w, _ := newTestWizard(&fakeClient{})
	d := w.Draft()
	require.NoError(t, d.SetMode(ModeAnonymous))
	d.Perpetrator.LastName = "Reyes"
	require.True(t, w.Next().OK)
	require.True(t, w.Back())

	// Step 2 was visited, so the mode stays locked even from step 1; the
	// shared perpetrator fields cannot leak into a different path.
	assert.ErrorIs(t, d.SetMode(ModeIdentified), ErrModeLocked)
	assert.Equal(t, ModeAnonymous, d.Mode)
	assert.NotNil(t, d.Anonymous)
	assert.Nil(t, d.Identified)
}

func TestResumeRestoresSavedDraft(t *testing.T) {
	kv := newMapKV()
	store := NewDraftStore(kv, "")
	ctx := context.Background()

	first := New(store, &fakeClient{})
	d := first.Draft()
	require.NoError(t, d.SetMode(ModeAnonymous))
	d.Anonymous.ReporterRole = "witness"
	d.Anonymous.TUPRole = "student"
	require.True(t, first.Next().OK)
	require.True(t, first.Next().OK)
	require.NoError(t, first.SaveProgress(ctx))

	// A fresh wizard instance over the same slot resumes exactly where the
	// first one stopped, with field values intact.
	second := New(NewDraftStore(kv, ""), &fakeClient{})
	require.True(t, second.Resume(ctx))
	idx, _ := second.Position()
	assert.Equal(t, 3, idx)
	assert.Equal(t, "witness", second.Draft().Anonymous.ReporterRole)
	assert.Equal(t, "student", second.Draft().Anonymous.TUPRole)
}

func TestResumeWithoutSavedDraft(t *testing.T) {
	w, _ := newTestWizard(&fakeClient{})
	assert.False(t, w.Resume(context.Background()))
	idx, step := w.Position()
	assert.Equal(t, 1, idx)
	assert.Equal(t, StepModeSelection, step)
}

func TestSubmitHappyPathClearsDraft(t *testing.T) {
	client := &fakeClient{receipt: &Receipt{TicketNumber: "GAD-2025-1a2b3c4d"}}
	w, kv := newTestWizard(client)
	fillIdentified(w)
	ctx := context.Background()
	require.NoError(t, w.SaveProgress(ctx))

	receipt, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GAD-2025-1a2b3c4d", receipt.TicketNumber)
	assert.True(t, w.Submitted())
	assert.Empty(t, kv.data, "saved draft must be cleared after acceptance")

	_, err = w.Submit(ctx)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitValidatesWholePath(t *testing.T) {
	w, _ := newTestWizard(&fakeClient{receipt: &Receipt{TicketNumber: "x"}})
	fillIdentified(w)
	w.Draft().ConfirmConfidentiality = false

	_, err := w.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepConfirmation, verr.Step)
	assert.False(t, w.Submitted())
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	client := &fakeClient{err: errors.New("network unreachable")}
	w, kv := newTestWizard(client)
	fillIdentified(w)
	ctx := context.Background()
	require.NoError(t, w.SaveProgress(ctx))

	_, err := w.Submit(ctx)
	require.Error(t, err)
	assert.False(t, w.Submitted())
	assert.NotEmpty(t, kv.data, "draft snapshot survives a failed submit")

	// Explicit retry works once the network is back.
	client.err = nil
	client.receipt = &Receipt{TicketNumber: "GAD-2025-deadbeef"}
	receipt, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GAD-2025-deadbeef", receipt.TicketNumber)
	assert.Equal(t, 2, client.calls)
}

func TestSubmitSingleInFlight(t *testing.T) {
	w, _ := newTestWizard(nil)
	fillIdentified(w)
	ctx := context.Background()

	client := &fakeClient{receipt: &Receipt{TicketNumber: "GAD-2025-0000ffff"}}
	client.onSubmit = func() {
		// A second submit while the first is unresolved is ignored.
		_, err := w.Submit(ctx)
		assert.ErrorIs(t, err, ErrSubmissionInFlight)
	}
	w.client = client

	receipt, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GAD-2025-0000ffff", receipt.TicketNumber)
	assert.Equal(t, 1, client.calls)
}
