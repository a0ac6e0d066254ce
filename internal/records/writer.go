package records

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/metrics"
)

const (
	KindArtifacts = "artifacts"
	KindScans     = "scans"
)

// Event describes a successful write, for live listeners.
type Event struct {
	Kind   string    `json:"kind"`
	Action string    `json:"action"`
	ID     int64     `json:"id"`
	At     time.Time `json:"at"`
}

// Publisher receives an Event after every successful write.
type Publisher interface {
	Publish(Event)
}

// Store is the subset of the database the writer needs.
type Store interface {
	CreateArtifact(ctx context.Context, a *database.Artifact) error
	UpdateArtifact(ctx context.Context, a *database.Artifact) error
	SoftDeleteArtifact(ctx context.Context, id int64) error
	CreateScan(ctx context.Context, s *database.Scan) error
	UpdateScan(ctx context.Context, s *database.Scan) error
	DeleteScan(ctx context.Context, id int64) error
}

// Writer validates submitted forms and applies them as single statements.
type Writer struct {
	store     Store
	publisher Publisher
	now       func() time.Time
}

func NewWriter(store Store, publisher Publisher) *Writer {
	return &Writer{store: store, publisher: publisher, now: time.Now}
}

func (w *Writer) CreateArtifact(ctx context.Context, form url.Values) (int64, error) {
	f, err := ParseArtifactForm(form)
	if err != nil {
		return 0, w.done(KindArtifacts, "created", 0, err)
	}
	a := f.Artifact(0)
	err = w.store.CreateArtifact(ctx, &a)
	return a.ID, w.done(KindArtifacts, "created", a.ID, err)
}

// UpdateArtifact replaces every mutable field; omitted fields are reset.
func (w *Writer) UpdateArtifact(ctx context.Context, id int64, form url.Values) error {
	f, err := ParseArtifactForm(form)
	if err != nil {
		return w.done(KindArtifacts, "updated", id, err)
	}
	a := f.Artifact(id)
	return w.done(KindArtifacts, "updated", id, w.store.UpdateArtifact(ctx, &a))
}

func (w *Writer) SoftDeleteArtifact(ctx context.Context, id int64) error {
	return w.done(KindArtifacts, "deleted", id, w.store.SoftDeleteArtifact(ctx, id))
}

func (w *Writer) CreateScan(ctx context.Context, form url.Values) (int64, error) {
	f, err := ParseScanForm(form)
	if err != nil {
		return 0, w.done(KindScans, "created", 0, err)
	}
	s := f.Scan(0)
	err = w.store.CreateScan(ctx, &s)
	return s.ID, w.done(KindScans, "created", s.ID, err)
}

// UpdateScan replaces every mutable field; omitted fields are reset.
func (w *Writer) UpdateScan(ctx context.Context, id int64, form url.Values) error {
	f, err := ParseScanForm(form)
	if err != nil {
		return w.done(KindScans, "updated", id, err)
	}
	s := f.Scan(id)
	return w.done(KindScans, "updated", id, w.store.UpdateScan(ctx, &s))
}

func (w *Writer) DeleteScan(ctx context.Context, id int64) error {
	return w.done(KindScans, "deleted", id, w.store.DeleteScan(ctx, id))
}

func (w *Writer) done(kind, action string, id int64, err error) error {
	metrics.RecordWrites.WithLabelValues(kind, action, Outcome(err)).Inc()
	if err == nil && w.publisher != nil {
		w.publisher.Publish(Event{Kind: kind, Action: action, ID: id, At: w.now()})
	}
	return err
}

// Outcome classifies a write error for metrics and user notices.
func Outcome(err error) string {
	var ie *InputError
	var ce *database.ConstraintError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ie):
		return "input_error"
	case errors.As(err, &ce):
		return "constraint_error"
	case errors.Is(err, database.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
