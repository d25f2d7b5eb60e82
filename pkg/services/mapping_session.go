package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

// MappingSession is the workflow behind one open mapping editor: it loads
// the active mapping, catalog and placeholder list, accumulates local edits,
// and commits them as a new version snapshot. Sessions are in-memory only
// and single-user; the stale-base check at commit time is what protects
// against a store that moved on while the editor was open.
type MappingSession struct {
	versionSvc VersionService
	templates  TemplateService
	catalog    CatalogService

	templateID   uuid.UUID
	placeholders []string
	keys         []models.StandardKey

	// baseVersionNumber is the active version number observed at load time;
	// 0 when the template had no versions.
	baseVersionNumber int

	loaded  models.PlaceholderMapping
	working models.PlaceholderMapping
	dirty   bool
}

// NewMappingSession creates an unloaded editing session.
func NewMappingSession(versionSvc VersionService, templates TemplateService, catalog CatalogService) *MappingSession {
	return &MappingSession{
		versionSvc: versionSvc,
		templates:  templates,
		catalog:    catalog,
	}
}

// Load fetches the template's current placeholders, active mapping and
// catalog, and initializes the working copy. Clears any pending edits.
func (s *MappingSession) Load(ctx context.Context, templateID uuid.UUID) error {
	template, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return err
	}

	keys, err := s.catalog.KeysFor(ctx, template.DocumentType)
	if err != nil {
		return err
	}

	s.templateID = template.ID
	s.placeholders = template.Placeholders
	s.keys = keys
	s.baseVersionNumber = 0
	s.loaded = models.PlaceholderMapping{}

	active, err := s.versionSvc.GetActiveVersion(ctx, templateID)
	switch {
	case err == nil:
		s.baseVersionNumber = active.VersionNumber
		s.loaded = clone(active.Mapping)
	case errors.Is(err, apperrors.ErrNoActiveVersion):
		// Zero versions: start from the template's mirror mapping.
		s.loaded = clone(template.Mapping)
	default:
		return err
	}

	s.working = clone(s.loaded)
	s.dirty = false
	return nil
}

// SetMapping updates the local working copy only. An empty target resets the
// placeholder to self-identity. Fails with ErrValidation when the
// placeholder is not part of the template.
func (s *MappingSession) SetMapping(placeholder, target string) error {
	if !s.hasPlaceholder(placeholder) {
		return fmt.Errorf("placeholder %q not in template: %w", placeholder, apperrors.ErrValidation)
	}

	if target == "" {
		delete(s.working, placeholder)
	} else {
		s.working[placeholder] = target
	}
	s.dirty = true
	return nil
}

// Dirty reports whether the working copy has uncommitted edits.
func (s *MappingSession) Dirty() bool {
	return s.dirty
}

// Resolutions returns the editor rows for the current working copy.
func (s *MappingSession) Resolutions() []models.PlaceholderResolution {
	return ResolveAll(s.placeholders, s.working, s.keys)
}

// Stats returns the completion statistics for the current working copy.
func (s *MappingSession) Stats() models.MappingStats {
	return ComputeStats(s.placeholders, s.working, s.keys)
}

// Commit validates the working mapping, drops entries for placeholders no
// longer present, and snapshots it as a new active version. The working copy
// is left untouched on failure so the user can retry; in particular a
// ErrConcurrentModification result preserves all local edits.
func (s *MappingSession) Commit(ctx context.Context, opts CreateVersionOptions) (*models.TemplateVersion, error) {
	if s.templateID == uuid.Nil {
		return nil, fmt.Errorf("session not loaded: %w", apperrors.ErrValidation)
	}

	// Entries for placeholders that disappeared since load are dropped;
	// placeholders without an entry default to self-identity, so the
	// normalized copy covers the full placeholder set.
	committed := normalizeMapping(s.working, s.placeholders)

	opts.BaseVersionNumber = &s.baseVersionNumber
	if s.baseVersionNumber == 0 {
		opts.BaseVersionNumber = nil
	}

	version, err := s.versionSvc.CreateVersion(ctx, s.templateID, s.placeholders, committed, opts)
	if err != nil {
		return nil, err
	}

	s.baseVersionNumber = version.VersionNumber
	s.loaded = clone(committed)
	s.working = clone(committed)
	s.dirty = false
	return version, nil
}

// Discard resets the working copy to the last loaded state.
func (s *MappingSession) Discard() {
	s.working = clone(s.loaded)
	s.dirty = false
}

func (s *MappingSession) hasPlaceholder(name string) bool {
	for _, p := range s.placeholders {
		if p == name {
			return true
		}
	}
	return false
}

func clone(mapping models.PlaceholderMapping) models.PlaceholderMapping {
	out := make(models.PlaceholderMapping, len(mapping))
	for k, v := range mapping {
		out[k] = v
	}
	return out
}
