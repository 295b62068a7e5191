package episode

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/pod-digest/internal/config"
	"github.com/Taichi-iskw/pod-digest/internal/repository"
)

// RepositoryFactory creates episode repositories backed by the configured database
type RepositoryFactory struct {
	loadConfig func() (*config.Config, error)
}

// NewRepositoryFactory creates a factory reading configuration through loadConfig
func NewRepositoryFactory(loadConfig func() (*config.Config, error)) *RepositoryFactory {
	return &RepositoryFactory{loadConfig: loadConfig}
}

// CreateRepository connects to the database and returns the repository with its cleanup function
func (f *RepositoryFactory) CreateRepository(ctx context.Context) (repository.EpisodeRepository, func(), error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	// Create database connection
	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cleanup := func() {
		dbPool.Close()
	}

	return repository.NewEpisodeRepository(dbPool), cleanup, nil
}

// resolve returns repo when set, otherwise one created through factory
func resolve(ctx context.Context, repo repository.EpisodeRepository, factory *RepositoryFactory) (repository.EpisodeRepository, func(), error) {
	if repo != nil {
		return repo, func() {}, nil
	}
	if factory == nil {
		return nil, nil, fmt.Errorf("no episode repository configured")
	}
	created, cleanup, err := factory.CreateRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create episode repository: %w", err)
	}
	return created, cleanup, nil
}
