package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/liveqai/eventhub/internal/config"
	"github.com/liveqai/eventhub/internal/megaquiz"
	"github.com/liveqai/eventhub/internal/repository"
	"github.com/liveqai/eventhub/internal/session"
	"github.com/liveqai/eventhub/pkg/auth"
	"github.com/liveqai/eventhub/pkg/clock"
	"github.com/liveqai/eventhub/pkg/hub"
	"github.com/liveqai/eventhub/pkg/redisfanout"
)

// sweepInterval is how often the background ticker sweeps Sessions idle
// since event_complete; idleSweepAfter is how long a completed event
// must sit before eviction.
const (
	sweepInterval  = 1 * time.Minute
	idleSweepAfter = 5 * time.Minute
)

// App represents the application
type App struct {
	config      *config.Config
	server      *Server
	db          *repository.DB
	redisClient *redis.Client
	hub         *session.Hub
	cancelSweep context.CancelFunc
}

// NewApp creates a new application instance
func NewApp() (*App, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup database
	db, err := repository.NewPostgresDB(cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to PostgreSQL database")

	// Setup Redis client for the optional spectator fan-out. Redis is
	// never the session's authority and is not required for the hub to
	// run.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx := context.Background()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		log.Printf("redis unavailable, spectator fan-out disabled: %v", err)
		redisClient.Close()
		redisClient = nil
	} else {
		log.Println("Connected to Redis")
	}

	registry := hub.NewRegistry()
	publisher := redisfanout.NewPublisher(redisClient)
	broadcaster := redisfanout.NewBroadcaster(ctx, registry, publisher)

	sessionCfg := toSessionConfig(cfg.Quiz)
	clk := clock.Real{}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT)
	log.Println("Initialized JWT authentication manager")

	// Initialize repositories, services, and handlers
	repos := NewRepositories(db)
	services := NewServices(repos, jwtManager, registry, broadcaster, publisher, clk, sessionCfg)
	handlers := NewHandlers(services, repos)

	// Setup router
	router := SetupRouter(handlers, jwtManager)

	// Setup server
	server := NewServer(cfg, router)

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go runSweepLoop(sweepCtx, services.Hub)

	return &App{
		config:      cfg,
		server:      server,
		db:          db,
		redisClient: redisClient,
		hub:         services.Hub,
		cancelSweep: cancelSweep,
	}, nil
}

// toSessionConfig converts the viper-loaded quiz config block into
// session.Config, including the string-to-enum conversion for the
// single-segment mega-quiz mode (internal/config deliberately does not
// import internal/session, so this conversion lives at the wiring edge).
func toSessionConfig(q config.QuizConfig) session.Config {
	mode := megaquiz.ModeRemix
	if q.MegaQuizSingleSegmentMode == string(megaquiz.ModeSkip) {
		mode = megaquiz.ModeSkip
	}
	return session.Config{
		TimePerQuestionS:          q.TimePerQuestionS,
		AnswerTimeoutGraceMs:      q.AnswerTimeoutGraceMs,
		HeartbeatIntervalS:        q.HeartbeatIntervalS,
		GracePeriodS:              q.GracePeriodS,
		ReconnectWindowS:          q.ReconnectWindowS,
		MegaQuizSingleSegmentMode: mode,
		JoinLockGraceS:            q.JoinLockGraceS,
		EventResumeDebounceS:      q.EventResumeDebounceS,
		SegmentResumeDebounceS:    q.SegmentResumeDebounceS,
		NumFakeAnswers:            q.NumFakeAnswers,
	}
}

// runSweepLoop periodically evicts idle Sessions until ctx is cancelled.
func runSweepLoop(ctx context.Context, h *session.Hub) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := h.Sweep(idleSweepAfter); len(evicted) > 0 {
				log.Printf("swept %d idle sessions", len(evicted))
			}
		}
	}
}

// Start starts the application
func (a *App) Start() {
	a.server.Start()
}

// Stop gracefully stops the application
func (a *App) Stop() {
	a.cancelSweep()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}
}
