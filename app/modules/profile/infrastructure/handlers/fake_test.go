package profilehandlers

import (
	"context"

	profileservice "github.com/Black-And-White-Club/opti-runner/app/modules/profile/application"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
)

type FakeService struct {
	GetProfileFunc        func(ctx context.Context, playerID, fallbackName string) (*profiledb.Profile, error)
	ChangeDisplayNameFunc func(ctx context.Context, playerID, newName string) (*profiledb.Profile, error)
}

func (f *FakeService) GetProfile(ctx context.Context, playerID, fallbackName string) (*profiledb.Profile, error) {
	if f.GetProfileFunc != nil {
		return f.GetProfileFunc(ctx, playerID, fallbackName)
	}
	return &profiledb.Profile{PlayerID: playerID, DisplayName: "Player"}, nil
}

func (f *FakeService) ChangeDisplayName(ctx context.Context, playerID, newName string) (*profiledb.Profile, error) {
	if f.ChangeDisplayNameFunc != nil {
		return f.ChangeDisplayNameFunc(ctx, playerID, newName)
	}
	return &profiledb.Profile{PlayerID: playerID, DisplayName: newName, NameChanges: 1}, nil
}

var _ profileservice.Service = (*FakeService)(nil)
