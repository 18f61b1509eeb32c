package wizard

import (
	"context"
	"encoding/json"
)

// KV is the raw string storage the draft store sits on. Mobile clients back
// it with secure device storage; reportctl backs it with a file; tests use a
// map.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// DefaultDraftKey is the single well-known slot. There is no history and no
// conflict detection: a newer save overwrites the prior draft.
const DefaultDraftKey = "gad.report.draft"

// DraftStore persists one in-progress draft as JSON under a fixed key.
type DraftStore struct {
	kv  KV
	key string
}

// NewDraftStore wires a store over kv. An empty key falls back to
// DefaultDraftKey.
func NewDraftStore(kv KV, key string) *DraftStore {
	if key == "" {
		key = DefaultDraftKey
	}
	return &DraftStore{kv: kv, key: key}
}

// Save snapshots the draft, overwriting any previous snapshot. A draft that
// has not chosen a mode may only be saved while still on step 1.
func (s *DraftStore) Save(ctx context.Context, d *Draft) error {
	if d.Mode == ModeUnset && d.CurrentStep > 1 {
		return ErrDraftUnsaveable
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, string(raw))
}

// Load returns the saved draft, or nothing. It never partially restores:
// a missing, unreadable, or unparseable snapshot all come back as (nil,
// false) so a corrupted slot simply means starting fresh.
func (s *DraftStore) Load(ctx context.Context) (*Draft, bool) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil || !found {
		return nil, false
	}

	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, false
	}
	if d.CurrentStep < 1 || d.CurrentStep > TotalSteps(d.Mode) {
		return nil, false
	}
	// Snapshots written before furthest-step tracking carry a zero; treat
	// the current position as visited so the mode lock still holds.
	if d.FurthestStep < d.CurrentStep {
		d.FurthestStep = d.CurrentStep
	}
	if d.FurthestStep > TotalSteps(d.Mode) {
		d.FurthestStep = TotalSteps(d.Mode)
	}
	return &d, true
}

// Clear deletes the saved snapshot. Called exactly once, after the server
// has accepted a submission; never on validation or network failure.
func (s *DraftStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}
