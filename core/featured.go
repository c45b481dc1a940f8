package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
)

// featuredDocument is the name of the document holding the featured list.
const featuredDocument = "featured"

// featuredState is the persisted shape of the featured list.
type featuredState struct {
	Entries []schema.FeaturedEntry `json:"entries"`
}

// FeaturedList is the manually curated list of artifacts. Only admins may change it.
type FeaturedList struct {
	store  contract.DocumentStore
	admins map[string]struct{}
	clock  contract.Clock
}

// NewFeaturedList creates a featured list persisted in store.
func NewFeaturedList(store contract.DocumentStore, admins []string, clock contract.Clock) *FeaturedList {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	set := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		set[a] = struct{}{}
	}
	return &FeaturedList{store: store, admins: set, clock: clock}
}

func (f *FeaturedList) authorize(actor string) error {
	if _, ok := f.admins[actor]; !ok || actor == "" {
		return fmt.Errorf("user %q cannot change the featured list: %w", actor, contract.ErrPermissionDenied)
	}
	return nil
}

// List returns the featured entries in the order they were added.
func (f *FeaturedList) List() ([]schema.FeaturedEntry, error) {
	state := featuredState{}
	if err := f.store.Load(featuredDocument, &state); err != nil && !errors.Is(err, contract.ErrNotFound) {
		return nil, err
	}
	if state.Entries == nil {
		state.Entries = []schema.FeaturedEntry{}
	}
	return state.Entries, nil
}

// Feature appends an artifact. Featuring an already featured artifact is a no-op.
func (f *FeaturedList) Feature(actor, artifactID string) error {
	if err := f.authorize(actor); err != nil {
		return err
	}
	if artifactID == "" {
		return fmt.Errorf("artifact id is required")
	}
	entries, err := f.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ArtifactID == artifactID {
			return nil
		}
	}
	entries = append(entries, schema.FeaturedEntry{
		ArtifactID: artifactID,
		FeaturedBy: actor,
		FeaturedAt: f.clock.Now().UTC(),
	})
	return f.store.Save(featuredDocument, featuredState{Entries: entries})
}

// Unfeature removes an artifact. Removing one that is not featured returns ErrNotFound.
func (f *FeaturedList) Unfeature(actor, artifactID string) error {
	if err := f.authorize(actor); err != nil {
		return err
	}
	entries, err := f.List()
	if err != nil {
		return err
	}
	kept := make([]schema.FeaturedEntry, 0, len(entries))
	for _, e := range entries {
		if e.ArtifactID != artifactID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return fmt.Errorf("artifact %s is not featured: %w", artifactID, contract.ErrNotFound)
	}
	return f.store.Save(featuredDocument, featuredState{Entries: kept})
}
