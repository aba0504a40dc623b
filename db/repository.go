package db

import (
	"context"
)

func (s *Store) CreateRepository(ctx context.Context, repo *Repository) error {
	tx, release := s.conn(ctx)
	defer release()

	return classify("create repository", tx.Create(repo).Error)
}

func (s *Store) DeleteRepositoryByID(ctx context.Context, id string) (bool, error) {
	return s.deleteWhere(ctx, "delete repository", &Repository{}, "id = ?", id)
}

func (s *Store) GetRepositoryByID(ctx context.Context, id string) (*Repository, error) {
	return s.getRepository(ctx, "id = ?", id)
}

func (s *Store) GetRepositoryByGithubID(ctx context.Context, githubID string) (*Repository, error) {
	return s.getRepository(ctx, "github_id = ?", githubID)
}

func (s *Store) getRepository(ctx context.Context, query string, arg string) (*Repository, error) {
	tx, release := s.conn(ctx)
	defer release()

	var repo Repository
	if err := tx.Where(query, arg).First(&repo).Error; err != nil {
		return nil, classify("get repository", err)
	}
	return &repo, nil
}

// ListRepositories returns every repository; an empty store yields an empty
// slice.
func (s *Store) ListRepositories(ctx context.Context) ([]Repository, error) {
	tx, release := s.conn(ctx)
	defer release()

	repos := []Repository{}
	if err := tx.Order("rowid").Find(&repos).Error; err != nil {
		return nil, classify("list repositories", err)
	}
	return repos, nil
}
