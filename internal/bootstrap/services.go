package bootstrap

import (
	"github.com/liveqai/eventhub/internal/joingate"
	"github.com/liveqai/eventhub/internal/joinflow"
	"github.com/liveqai/eventhub/internal/session"
	"github.com/liveqai/eventhub/pkg/auth"
	"github.com/liveqai/eventhub/pkg/clock"
	"github.com/liveqai/eventhub/pkg/hub"
	"github.com/liveqai/eventhub/pkg/redisfanout"
)

// Services holds the long-lived domain-layer instances: one Hub of
// per-Event Sessions and one join-admission Service, both stateful for
// the life of the process.
type Services struct {
	Hub        *session.Hub
	JoinSvc    *joinflow.Service
	JWTManager *auth.JWTManager
	Registry   *hub.Registry
	Publisher  *redisfanout.Publisher
	SessionCfg session.Config
}

// NewServices wires the Hub and join-admission Service on top of the
// repository layer, a shared Gate serializing concurrent joins per event,
// and the connection Registry that acts as every Session's Broadcaster.
func NewServices(repos *Repositories, jwtManager *auth.JWTManager, registry *hub.Registry, broadcaster session.Broadcaster, publisher *redisfanout.Publisher, clk clock.Clock, sessionCfg session.Config) *Services {
	gate := joingate.New()
	joinCfg := joinflow.Config{
		JoinLockGraceS:       sessionCfg.JoinLockGraceS,
		GateAcquireTimeoutMs: 2000,
	}

	h := session.NewHub(repos.Repo, clk, sessionCfg, broadcaster)
	joinSvc := joinflow.New(repos.Repo, gate, clk, joinCfg)

	return &Services{
		Hub:        h,
		JoinSvc:    joinSvc,
		JWTManager: jwtManager,
		Registry:   registry,
		Publisher:  publisher,
		SessionCfg: sessionCfg,
	}
}
