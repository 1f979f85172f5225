package bootstrap

import (
	"github.com/liveqai/eventhub/internal/handler"
)

// Handlers holds all handler instances.
type Handlers struct {
	JoinHandler        *handler.JoinHandler
	WSHandler          *handler.WSHandler
	SpectatorHandler   *handler.SpectatorHandler
	JoinLockHandler    *handler.JoinLockHandler
	EventResumeHandler *handler.EventResumeHandler
}

// NewHandlers initializes all handlers.
func NewHandlers(services *Services, repos *Repositories) *Handlers {
	return &Handlers{
		JoinHandler:        handler.NewJoinHandler(services.JoinSvc, services.Hub),
		WSHandler:          handler.NewWSHandler(services.Hub, services.Registry, repos.Repo, services.SessionCfg),
		SpectatorHandler:   handler.NewSpectatorHandler(services.Hub, services.Publisher),
		JoinLockHandler:    handler.NewJoinLockHandler(services.Hub),
		EventResumeHandler: handler.NewEventResumeHandler(services.Hub),
	}
}
