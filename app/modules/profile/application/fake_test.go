package profileservice

import (
	"context"
	"sync"

	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Profile Repo
// ------------------------

type FakeProfileRepo struct {
	trace []string

	GetByPlayerIDFunc        func(ctx context.Context, db bun.IDB, playerID string) (*profiledb.Profile, error)
	GetOrCreateFunc          func(ctx context.Context, db bun.IDB, playerID, defaultName string) (*profiledb.Profile, error)
	GetOrCreateForUpdateFunc func(ctx context.Context, db bun.IDB, playerID, defaultName string) (*profiledb.Profile, error)
	AccumulateFunc           func(ctx context.Context, db bun.IDB, a profiledb.Accumulation) (*profiledb.Profile, error)
	ChangeDisplayNameFunc    func(ctx context.Context, db bun.IDB, playerID, name string, maxChanges int) (*profiledb.Profile, error)
}

func NewFakeProfileRepo() *FakeProfileRepo {
	return &FakeProfileRepo{
		trace: []string{},
	}
}

func (f *FakeProfileRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeProfileRepo) GetByPlayerID(ctx context.Context, db bun.IDB, playerID string) (*profiledb.Profile, error) {
	f.record("GetByPlayerID")
	if f.GetByPlayerIDFunc != nil {
		return f.GetByPlayerIDFunc(ctx, db, playerID)
	}
	return nil, profiledb.ErrNotFound
}

func (f *FakeProfileRepo) GetOrCreate(ctx context.Context, db bun.IDB, playerID, defaultName string) (*profiledb.Profile, error) {
	f.record("GetOrCreate")
	if f.GetOrCreateFunc != nil {
		return f.GetOrCreateFunc(ctx, db, playerID, defaultName)
	}
	return &profiledb.Profile{PlayerID: playerID, DisplayName: defaultName}, nil
}

func (f *FakeProfileRepo) GetOrCreateForUpdate(ctx context.Context, db bun.IDB, playerID, defaultName string) (*profiledb.Profile, error) {
	f.record("GetOrCreateForUpdate")
	if f.GetOrCreateForUpdateFunc != nil {
		return f.GetOrCreateForUpdateFunc(ctx, db, playerID, defaultName)
	}
	return &profiledb.Profile{PlayerID: playerID, DisplayName: defaultName}, nil
}

func (f *FakeProfileRepo) Accumulate(ctx context.Context, db bun.IDB, a profiledb.Accumulation) (*profiledb.Profile, error) {
	f.record("Accumulate")
	if f.AccumulateFunc != nil {
		return f.AccumulateFunc(ctx, db, a)
	}
	return &profiledb.Profile{PlayerID: a.PlayerID, DisplayName: a.DisplayName, HighestScore: a.Score, CurrencyBalance: a.Currency, GamesPlayed: 1}, nil
}

func (f *FakeProfileRepo) ChangeDisplayName(ctx context.Context, db bun.IDB, playerID, name string, maxChanges int) (*profiledb.Profile, error) {
	f.record("ChangeDisplayName")
	if f.ChangeDisplayNameFunc != nil {
		return f.ChangeDisplayNameFunc(ctx, db, playerID, name, maxChanges)
	}
	return &profiledb.Profile{PlayerID: playerID, DisplayName: name, NameChanges: 1}, nil
}

// --- Accessors for assertions ---

func (f *FakeProfileRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ profiledb.Repository = (*FakeProfileRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu        sync.Mutex
	Published map[string][]*message.Message
	Err       error
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Published: map[string][]*message.Message{}}
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published[topic] = append(p.Published[topic], msgs...)
	return nil
}

func (p *FakePublisher) Close() error { return nil }

func (p *FakePublisher) Count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Published[topic])
}

var _ message.Publisher = (*FakePublisher)(nil)
