package db

import (
	"context"
	"fmt"
)

func (s *Store) CreateManifest(ctx context.Context, manifest *Manifest) error {
	tx, release := s.conn(ctx)
	defer release()

	return classify("create manifest", tx.Create(manifest).Error)
}

func (s *Store) DeleteManifestByID(ctx context.Context, id string) (bool, error) {
	return s.deleteWhere(ctx, "delete manifest", &Manifest{}, "id = ?", id)
}

func (s *Store) DeleteManifestsByRepositoryID(ctx context.Context, repositoryID string) (bool, error) {
	return s.deleteWhere(ctx, "delete manifests", &Manifest{}, "repository_id = ?", repositoryID)
}

func (s *Store) GetManifestByID(ctx context.Context, id string) (*Manifest, error) {
	return s.getManifest(ctx, "id = ?", id)
}

// GetManifestByFilename looks a manifest up by the file name of its content,
// e.g. "hk4e_global.json".
func (s *Store) GetManifestByFilename(ctx context.Context, filename string) (*Manifest, error) {
	return s.getManifest(ctx, "filename = ?", filename)
}

func (s *Store) getManifest(ctx context.Context, query string, arg string) (*Manifest, error) {
	tx, release := s.conn(ctx)
	defer release()

	var manifest Manifest
	if err := tx.Where(query, arg).First(&manifest).Error; err != nil {
		return nil, classify("get manifest", err)
	}
	return &manifest, nil
}

// ListManifestsByRepositoryID returns ErrNotFound when the repository does
// not exist and an empty slice when it has no manifests.
func (s *Store) ListManifestsByRepositoryID(ctx context.Context, repositoryID string) ([]Manifest, error) {
	ok, err := s.exists(ctx, &Repository{}, repositoryID)
	if err != nil {
		return nil, classify("list manifests", err)
	}
	if !ok {
		return nil, fmt.Errorf("list manifests: repository %s: %w", repositoryID, ErrNotFound)
	}

	tx, release := s.conn(ctx)
	defer release()

	manifests := []Manifest{}
	if err := tx.Where("repository_id = ?", repositoryID).Order("rowid").Find(&manifests).Error; err != nil {
		return nil, classify("list manifests", err)
	}
	return manifests, nil
}

func (s *Store) UpdateManifestEnabledByID(ctx context.Context, id string, enabled bool) error {
	return s.updateColumn(ctx, "update manifest enabled", &Manifest{}, id, "enabled", enabled)
}
