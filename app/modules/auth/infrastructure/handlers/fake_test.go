package authhandlers

import (
	"context"
	"time"

	authservice "github.com/Black-And-White-Club/opti-runner/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/opti-runner/app/modules/auth/domain"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	IssueTokenFunc    func(ctx context.Context, playerID, displayName string, ttl time.Duration) (string, error)
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

func (f *FakeService) IssueToken(ctx context.Context, playerID, displayName string, ttl time.Duration) (string, error) {
	if f.IssueTokenFunc != nil {
		return f.IssueTokenFunc(ctx, playerID, displayName, ttl)
	}
	return "fake-token", nil
}

func (f *FakeService) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(ctx, tokenString)
	}
	return &authdomain.Claims{PlayerID: "test-player"}, nil
}

var _ authservice.Service = (*FakeService)(nil)
