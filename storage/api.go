// Package storage defines storage interfaces.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zihgir1/BEVM/common"
)

// Publication records that a chain spec was handed out, either written by
// `build-spec --record` or served for the first time by the API.
type Publication struct {
	ID          uuid.UUID      `json:"id"`
	Profile     common.Profile `json:"profile"`
	ChainID     string         `json:"chain_id"`
	GenesisHash string         `json:"genesis_hash"`
	SpecHash    string         `json:"spec_hash"`
	Frozen      bool           `json:"frozen"`
	Size        int            `json:"size"`
	CreatedAt   time.Time      `json:"created_at"`
}

// PublicationFilter narrows a publication listing.
type PublicationFilter struct {
	// Profile restricts the listing to one profile if set.
	Profile *common.Profile
	Limit   uint64
	Offset  uint64
}

// PublicationStore defines an interface for recording and listing
// published chain specs.
type PublicationStore interface {
	// RecordPublication stores a publication. A zero ID or creation time is
	// filled in before the record is written.
	RecordPublication(ctx context.Context, p *Publication) error

	// Publications lists publications, newest first.
	Publications(ctx context.Context, filter PublicationFilter) ([]Publication, error)

	// Close releases the store's resources.
	Close()

	// Name returns the name of the store.
	Name() string
}
