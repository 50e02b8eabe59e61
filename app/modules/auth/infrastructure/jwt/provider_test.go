package authjwt

import (
	"errors"
	"os"
	"testing"
	"time"

	authdomain "github.com/Black-And-White-Club/opti-runner/app/modules/auth/domain"
	"github.com/golang-jwt/jwt/v5"
)

func TestProvider_GenerateAndValidateToken(t *testing.T) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "test-secret-at-least-32-chars-long!!"
	}
	p := NewProvider(secret)

	claims := &authdomain.Claims{
		PlayerID:    "player-123",
		DisplayName: "runner_01",
	}

	tests := []struct {
		name        string
		setupClaims *authdomain.Claims
		rawToken    string
		ttl         time.Duration
		provider    Provider
		expectedErr error
		verify      func(t *testing.T, validated *authdomain.Claims)
	}{
		{
			name:        "success",
			setupClaims: claims,
			ttl:         1 * time.Hour,
			verify: func(t *testing.T, validated *authdomain.Claims) {
				if validated.PlayerID != claims.PlayerID {
					t.Errorf("expected playerID %s, got %s", claims.PlayerID, validated.PlayerID)
				}
				if validated.DisplayName != claims.DisplayName {
					t.Errorf("expected name %s, got %s", claims.DisplayName, validated.DisplayName)
				}
				if validated.TokenID == "" {
					t.Error("expected a token id")
				}
				if validated.IsExpired() {
					t.Error("fresh token reported as expired")
				}
			},
		},
		{
			name:        "name claim is optional",
			setupClaims: &authdomain.Claims{PlayerID: "anon"},
			ttl:         time.Hour,
			verify: func(t *testing.T, validated *authdomain.Claims) {
				if validated.DisplayName != "" {
					t.Errorf("expected empty name, got %q", validated.DisplayName)
				}
			},
		},
		{
			name:        "expired token",
			setupClaims: claims,
			ttl:         -1 * time.Hour,
			expectedErr: ErrExpiredToken,
		},
		{
			name:        "invalid signature",
			setupClaims: claims,
			ttl:         1 * time.Hour,
			provider:    NewProvider("wrong-secret"),
			expectedErr: ErrInvalidSignature,
		},
		{
			name:        "missing subject",
			setupClaims: &authdomain.Claims{},
			ttl:         time.Hour,
			expectedErr: ErrInvalidToken,
		},
		{
			name:        "malformed token",
			rawToken:    "not.a.jwt",
			expectedErr: ErrInvalidToken,
		},
		{
			name:        "unsigned token",
			rawToken:    unsignedToken(t),
			expectedErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tt.rawToken
			if tt.setupClaims != nil {
				var err error
				token, err = p.GenerateToken(tt.setupClaims, tt.ttl)
				if err != nil {
					t.Fatalf("failed to generate token: %v", err)
				}
			}

			validateTarget := p
			if tt.provider != nil {
				validateTarget = tt.provider
			}

			validatedClaims, err := validateTarget.ValidateToken(token)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.verify != nil {
				tt.verify(t, validatedClaims)
			}
		})
	}
}

func unsignedToken(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "p1"})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}
	return s
}
