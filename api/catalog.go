package api

import (
	"context"
	"fmt"

	"github.com/zihgir1/BEVM/chainspec"
	"github.com/zihgir1/BEVM/common"
)

// Entry is a built chain spec ready to be served.
type Entry struct {
	Profile common.Profile
	// Encoded is the canonical encoding of the envelope.
	Encoded []byte
	Summary *chainspec.Summary
}

// Catalog holds the chain specs the API distributes. It is built once and
// never changes afterwards.
type Catalog struct {
	entries []*Entry
	byID    map[common.Profile]*Entry
}

// NewCatalog builds every given profile concurrently.
func NewCatalog(ctx context.Context, b *chainspec.Builder, profiles []common.Profile, opts chainspec.BuildOptions) (*Catalog, error) {
	envs, err := b.BuildAll(ctx, profiles, opts)
	if err != nil {
		return nil, err
	}

	c := &Catalog{byID: make(map[common.Profile]*Entry, len(profiles))}
	for i, profile := range profiles {
		if _, dup := c.byID[profile]; dup {
			continue
		}
		encoded, err := chainspec.Encode(envs[i])
		if err != nil {
			return nil, err
		}
		summary, err := chainspec.Summarize(profile, envs[i])
		if err != nil {
			return nil, fmt.Errorf("summarizing %s: %w", profile, err)
		}
		e := &Entry{Profile: profile, Encoded: encoded, Summary: summary}
		c.entries = append(c.entries, e)
		c.byID[profile] = e
	}
	return c, nil
}

// Entries returns the catalog entries in build order.
func (c *Catalog) Entries() []*Entry {
	return append([]*Entry{}, c.entries...)
}

// Get returns the entry of a profile, or ErrNotFound if the profile is not
// served.
func (c *Catalog) Get(profile common.Profile) (*Entry, error) {
	e, ok := c.byID[profile]
	if !ok {
		return nil, fmt.Errorf("%w: chain spec of profile %s", ErrNotFound, profile)
	}
	return e, nil
}
