package authservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authdomain "github.com/Black-And-White-Club/opti-runner/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/opti-runner/app/modules/auth/infrastructure/jwt"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config holds the configuration for the auth service.
type Config struct {
	DefaultTTL time.Duration
}

const DefaultTokenTTL = 24 * time.Hour

// service implements the Service interface.
type service struct {
	jwtProvider authjwt.Provider
	config      Config
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates a new auth service.
func NewService(
	jwtProvider authjwt.Provider,
	config Config,
	logger *slog.Logger,
	tracer trace.Tracer,
) Service {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("auth")
	}
	return &service{
		jwtProvider: jwtProvider,
		config:      config,
		logger:      logger,
		tracer:      tracer,
	}
}

// IssueToken mints a signed bearer token for playerID.
func (s *service) IssueToken(ctx context.Context, playerID, displayName string, ttl time.Duration) (string, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.IssueToken")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return "", ErrMissingPlayer
	}
	if ttl <= 0 {
		ttl = s.config.DefaultTTL
	}

	token, err := s.jwtProvider.GenerateToken(&authdomain.Claims{
		PlayerID:    playerID,
		DisplayName: strings.TrimSpace(displayName),
	}, ttl)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: %w", ErrGenerateToken, err)
	}

	s.logger.InfoContext(ctx, "Issued player token",
		slog.String("player_id", playerID),
		slog.Duration("ttl", ttl),
	)
	return token, nil
}

// ValidateToken validates a JWT token and returns the claims if valid.
func (s *service) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.ValidateToken")
	defer span.End()

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.jwtProvider.ValidateToken(tokenString)
	if err != nil {
		s.logger.WarnContext(ctx, "Token validation failed",
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.DebugContext(ctx, "Token validated successfully",
		slog.String("player_id", claims.PlayerID),
	)

	return claims, nil
}
