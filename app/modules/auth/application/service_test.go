package authservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	authdomain "github.com/Black-And-White-Club/opti-runner/app/modules/auth/domain"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestService_IssueToken(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name      string
		playerID  string
		player    string
		ttl       time.Duration
		setupMock func(j *FakeJWTProvider)
		verify    func(t *testing.T, j *FakeJWTProvider, token string, err error)
	}{
		{
			name:     "missing player",
			playerID: "  ",
			verify: func(t *testing.T, j *FakeJWTProvider, token string, err error) {
				if !errors.Is(err, ErrMissingPlayer) {
					t.Errorf("expected ErrMissingPlayer, got %v", err)
				}
				if len(j.Trace()) != 0 {
					t.Errorf("provider should not be called, trace=%v", j.Trace())
				}
			},
		},
		{
			name:     "default ttl applied",
			playerID: "p1",
			player:   " runner ",
			setupMock: func(j *FakeJWTProvider) {
				j.GenerateTokenFunc = func(claims *authdomain.Claims, ttl time.Duration) (string, error) {
					if ttl != 2*time.Hour {
						t.Errorf("expected configured ttl, got %v", ttl)
					}
					if claims.PlayerID != "p1" || claims.DisplayName != "runner" {
						t.Errorf("unexpected claims %+v", claims)
					}
					return "signed", nil
				}
			},
			verify: func(t *testing.T, j *FakeJWTProvider, token string, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if token != "signed" {
					t.Errorf("expected signed token, got %q", token)
				}
			},
		},
		{
			name:     "explicit ttl",
			playerID: "p1",
			ttl:      time.Minute,
			setupMock: func(j *FakeJWTProvider) {
				j.GenerateTokenFunc = func(_ *authdomain.Claims, ttl time.Duration) (string, error) {
					if ttl != time.Minute {
						t.Errorf("expected 1m ttl, got %v", ttl)
					}
					return "signed", nil
				}
			},
			verify: func(t *testing.T, j *FakeJWTProvider, token string, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			},
		},
		{
			name:     "provider failure",
			playerID: "p1",
			setupMock: func(j *FakeJWTProvider) {
				j.GenerateTokenFunc = func(*authdomain.Claims, time.Duration) (string, error) {
					return "", errors.New("sign failed")
				}
			},
			verify: func(t *testing.T, j *FakeJWTProvider, token string, err error) {
				if !errors.Is(err, ErrGenerateToken) {
					t.Errorf("expected ErrGenerateToken, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtProvider := &FakeJWTProvider{}
			if tt.setupMock != nil {
				tt.setupMock(jwtProvider)
			}

			s := NewService(jwtProvider, Config{DefaultTTL: 2 * time.Hour}, logger, tracer)
			token, err := s.IssueToken(ctx, tt.playerID, tt.player, tt.ttl)
			tt.verify(t, jwtProvider, token, err)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name        string
		tokenString string
		setupMock   func(j *FakeJWTProvider)
		verify      func(t *testing.T, claims *authdomain.Claims, err error)
	}{
		{
			name:        "empty token",
			tokenString: "",
			verify: func(t *testing.T, claims *authdomain.Claims, err error) {
				if !errors.Is(err, ErrMissingToken) {
					t.Errorf("expected ErrMissingToken, got %v", err)
				}
			},
		},
		{
			name:        "valid token",
			tokenString: "valid-token",
			setupMock: func(j *FakeJWTProvider) {
				j.ValidateTokenFunc = func(tokenString string) (*authdomain.Claims, error) {
					return &authdomain.Claims{PlayerID: "u1"}, nil
				}
			},
			verify: func(t *testing.T, claims *authdomain.Claims, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if claims.PlayerID != "u1" {
					t.Errorf("expected player ID u1, got %s", claims.PlayerID)
				}
			},
		},
		{
			name:        "invalid token",
			tokenString: "invalid-token",
			setupMock: func(j *FakeJWTProvider) {
				j.ValidateTokenFunc = func(tokenString string) (*authdomain.Claims, error) {
					return nil, errors.New("invalid token")
				}
			},
			verify: func(t *testing.T, claims *authdomain.Claims, err error) {
				if err == nil || !strings.Contains(err.Error(), "invalid token") {
					t.Errorf("expected invalid token error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtProvider := &FakeJWTProvider{}
			if tt.setupMock != nil {
				tt.setupMock(jwtProvider)
			}

			s := NewService(jwtProvider, Config{}, logger, tracer)
			claims, err := s.ValidateToken(ctx, tt.tokenString)
			tt.verify(t, claims, err)
		})
	}
}
