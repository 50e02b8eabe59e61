package profile

import (
	"context"
	"net/http"

	"github.com/Black-And-White-Club/opti-runner/app/eventbus"
	profileservice "github.com/Black-And-White-Club/opti-runner/app/modules/profile/application"
	profilehandlers "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/handlers"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/Black-And-White-Club/opti-runner/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the profile module.
type Module struct {
	ProfileService profileservice.Service
	Repository     profiledb.Repository
	handlers       *profilehandlers.ProfileHandlers
	observability  *observability.Observability
}

// NewProfileModule creates and initializes a new profile module.
func NewProfileModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	metrics observability.OperationMetrics,
	bus *eventbus.EventBus,
	db *bun.DB,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "profile.NewProfileModule initializing")

	var publisher message.Publisher
	if bus != nil {
		publisher = bus
	}

	repo := profiledb.NewRepository(db)
	service := profileservice.NewProfileService(repo, publisher, logger, metrics, obs.Tracer, db, profileservice.Options{
		MaxNameChanges: cfg.Profile.MaxNameChanges,
		DefaultName:    cfg.Profile.DefaultName,
		Clock:          shared.RealClock{},
	})

	return &Module{
		ProfileService: service,
		Repository:     repo,
		handlers:       profilehandlers.NewProfileHandlers(service, logger),
		observability:  obs,
	}
}

// RegisterRoutes mounts /api/profile on r.
func (m *Module) RegisterRoutes(r chi.Router, requirePlayer, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api/profile", func(r chi.Router) {
		r.Use(rateLimit)
		m.handlers.Routes(r, requirePlayer)
	})
}

// Close shuts down the profile module.
func (m *Module) Close() error {
	m.observability.Logger.Info("Profile module stopped")
	return nil
}
