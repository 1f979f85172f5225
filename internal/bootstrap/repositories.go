// Package bootstrap handles the initialization and wiring of application components
package bootstrap

import (
	"github.com/liveqai/eventhub/internal/repository"
)

// Repositories holds the repository instances the hub depends on. The
// per-aggregate repositories compose into one
// internal/repository.Repository, so there is only one field to wire.
type Repositories struct {
	Repo repository.Repository
}

// NewRepositories initializes the repository layer.
func NewRepositories(db *repository.DB) *Repositories {
	return &Repositories{
		Repo: repository.NewPostgresRepository(db),
	}
}
