package authdomain

import (
	"context"
	"testing"
	"time"
)

func TestClaims_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "not expired (future)",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "expired (past)",
			expiresAt: time.Now().Add(-1 * time.Hour),
			want:      true,
		},
		{
			name:      "expired (just now)",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{
				ExpiresAt: tt.expiresAt,
			}
			if got := c.IsExpired(); got != tt.want {
				t.Errorf("Claims.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlayerFromContext(t *testing.T) {
	if _, ok := PlayerFromContext(context.Background()); ok {
		t.Fatal("expected no player on empty context")
	}

	ctx := WithPlayer(context.Background(), Player{ID: "p1", Name: "runner"})
	p, ok := PlayerFromContext(ctx)
	if !ok {
		t.Fatal("expected player on context")
	}
	if p.ID != "p1" || p.Name != "runner" {
		t.Errorf("unexpected player %+v", p)
	}

	if _, ok := PlayerFromContext(WithPlayer(context.Background(), Player{})); ok {
		t.Error("player without id must not count as authenticated")
	}
}
