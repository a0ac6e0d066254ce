// Package session keeps per-browser state: the stored listing filters and
// one-shot flash notices. State lives in a Store keyed by a cookie id.
package session

import (
	"context"
	"errors"

	"github.com/jamesruggles/scanledger/internal/filters"
)

// ErrNoSession is returned by a Store when the id is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Flash is a notice shown once on the next rendered page.
type Flash struct {
	Category string `json:"category"` // success or error
	Message  string `json:"message"`
}

// Data is everything stored for one session. Writes replace it whole.
type Data struct {
	ArtifactFilters *filters.ArtifactFilters `json:"artifact_filters,omitempty"`
	ScanFilters     *filters.ScanFilters     `json:"scan_filters,omitempty"`
	Flashes         []Flash                  `json:"flashes,omitempty"`
}

// Store persists session data by id.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
}

// AddFlash queues a notice for the next page.
func (d *Data) AddFlash(category, message string) {
	d.Flashes = append(d.Flashes, Flash{Category: category, Message: message})
}

// TakeFlashes returns and clears the queued notices.
func (d *Data) TakeFlashes() []Flash {
	f := d.Flashes
	d.Flashes = nil
	return f
}
