package leaderboardservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/repositories"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Leaderboard Repo
// ------------------------

type weeklyKey struct {
	playerID string
	week     time.Time
}

type subKey struct {
	playerID     string
	submissionID string
}

// FakeLeaderboardRepo is an in-memory store with the same upsert-if-better
// policy as the SQL one. XxxFunc fields override individual calls.
type FakeLeaderboardRepo struct {
	mu    sync.Mutex
	trace []string

	global      map[string]leaderboarddomain.Entry
	weekly      map[weeklyKey]leaderboarddomain.Entry
	submissions map[subKey]leaderboarddb.Submission

	UpsertIfBetterFunc    func(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, entry leaderboarddomain.Entry) (leaderboarddomain.UpsertOutcome, error)
	RenameDisplayNameFunc func(ctx context.Context, db bun.IDB, playerID, displayName string) (int64, error)
	TopNFunc              func(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, n int, weekStart time.Time) ([]leaderboarddomain.Entry, error)
	FindSubmissionFunc    func(ctx context.Context, db bun.IDB, playerID, submissionID string) (*leaderboarddb.Submission, error)
	RecordSubmissionFunc  func(ctx context.Context, db bun.IDB, sub *leaderboarddb.Submission) error
}

func NewFakeLeaderboardRepo() *FakeLeaderboardRepo {
	return &FakeLeaderboardRepo{
		trace:       []string{},
		global:      map[string]leaderboarddomain.Entry{},
		weekly:      map[weeklyKey]leaderboarddomain.Entry{},
		submissions: map[subKey]leaderboarddb.Submission{},
	}
}

func (f *FakeLeaderboardRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeLeaderboardRepo) UpsertIfBetter(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, entry leaderboarddomain.Entry) (leaderboarddomain.UpsertOutcome, error) {
	f.record("UpsertIfBetter:" + string(scope))
	if f.UpsertIfBetterFunc != nil {
		return f.UpsertIfBetterFunc(ctx, db, scope, entry)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch scope {
	case leaderboarddomain.ScopeGlobal:
		entry.WeekStart = time.Time{}
		cur, ok := f.global[entry.PlayerID]
		if !ok {
			f.global[entry.PlayerID] = entry
			return leaderboarddomain.Inserted, nil
		}
		if !leaderboarddomain.Beats(entry, cur) {
			return leaderboarddomain.KeptExisting, nil
		}
		f.global[entry.PlayerID] = entry
		return leaderboarddomain.UpdatedToHigher, nil
	case leaderboarddomain.ScopeWeekly:
		key := weeklyKey{entry.PlayerID, entry.WeekStart}
		cur, ok := f.weekly[key]
		if !ok {
			f.weekly[key] = entry
			return leaderboarddomain.Inserted, nil
		}
		if !leaderboarddomain.Beats(entry, cur) {
			return leaderboarddomain.KeptExisting, nil
		}
		f.weekly[key] = entry
		return leaderboarddomain.UpdatedToHigher, nil
	}
	return "", leaderboarddb.ErrInvalidScope
}

func (f *FakeLeaderboardRepo) RenameDisplayName(ctx context.Context, db bun.IDB, playerID, displayName string) (int64, error) {
	f.record("RenameDisplayName")
	if f.RenameDisplayNameFunc != nil {
		return f.RenameDisplayNameFunc(ctx, db, playerID, displayName)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	if e, ok := f.global[playerID]; ok {
		e.DisplayName = displayName
		f.global[playerID] = e
		n++
	}
	for k, e := range f.weekly {
		if k.playerID == playerID {
			e.DisplayName = displayName
			f.weekly[k] = e
			n++
		}
	}
	return n, nil
}

func (f *FakeLeaderboardRepo) TopN(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, n int, weekStart time.Time) ([]leaderboarddomain.Entry, error) {
	f.record("TopN")
	if f.TopNFunc != nil {
		return f.TopNFunc(ctx, db, scope, n, weekStart)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leaderboarddomain.Entry
	if scope == leaderboarddomain.ScopeGlobal {
		for _, e := range f.global {
			out = append(out, e)
		}
	} else {
		for k, e := range f.weekly {
			if k.week.Equal(weekStart) {
				out = append(out, e)
			}
		}
	}
	leaderboarddomain.SortEntries(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *FakeLeaderboardRepo) GetEntry(_ context.Context, _ bun.IDB, scope leaderboarddomain.Scope, playerID string, weekStart time.Time) (*leaderboarddomain.Entry, error) {
	f.record("GetEntry")
	f.mu.Lock()
	defer f.mu.Unlock()
	var (
		e  leaderboarddomain.Entry
		ok bool
	)
	if scope == leaderboarddomain.ScopeGlobal {
		e, ok = f.global[playerID]
	} else {
		e, ok = f.weekly[weeklyKey{playerID, weekStart}]
	}
	if !ok {
		return nil, leaderboarddb.ErrNotFound
	}
	return &e, nil
}

func (f *FakeLeaderboardRepo) FindSubmission(ctx context.Context, db bun.IDB, playerID, submissionID string) (*leaderboarddb.Submission, error) {
	f.record("FindSubmission")
	if f.FindSubmissionFunc != nil {
		return f.FindSubmissionFunc(ctx, db, playerID, submissionID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.submissions[subKey{playerID, submissionID}]
	if !ok {
		return nil, leaderboarddb.ErrNotFound
	}
	return &sub, nil
}

func (f *FakeLeaderboardRepo) RecordSubmission(ctx context.Context, db bun.IDB, sub *leaderboarddb.Submission) error {
	f.record("RecordSubmission")
	if f.RecordSubmissionFunc != nil {
		return f.RecordSubmissionFunc(ctx, db, sub)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := subKey{sub.PlayerID, sub.SubmissionID}
	if _, ok := f.submissions[key]; ok {
		return leaderboarddb.ErrDuplicateSubmission
	}
	f.submissions[key] = *sub
	return nil
}

// --- Accessors for assertions ---

func (f *FakeLeaderboardRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLeaderboardRepo) RowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.global) + len(f.weekly)
}

var _ leaderboarddb.Repository = (*FakeLeaderboardRepo)(nil)

// ------------------------
// Fake Profile Store
// ------------------------

type FakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*profiledb.Profile

	GetOrCreateForUpdateFunc func(ctx context.Context, db bun.IDB, playerID, defaultName string) (*profiledb.Profile, error)
	AccumulateFunc           func(ctx context.Context, db bun.IDB, a profiledb.Accumulation) (*profiledb.Profile, error)
}

func NewFakeProfileStore() *FakeProfileStore {
	return &FakeProfileStore{profiles: map[string]*profiledb.Profile{}}
}

func (f *FakeProfileStore) GetOrCreateForUpdate(ctx context.Context, db bun.IDB, playerID, defaultName string) (*profiledb.Profile, error) {
	if f.GetOrCreateForUpdateFunc != nil {
		return f.GetOrCreateForUpdateFunc(ctx, db, playerID, defaultName)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[playerID]
	if !ok {
		p = &profiledb.Profile{PlayerID: playerID, DisplayName: defaultName}
		f.profiles[playerID] = p
	}
	cp := *p
	return &cp, nil
}

func (f *FakeProfileStore) Accumulate(ctx context.Context, db bun.IDB, a profiledb.Accumulation) (*profiledb.Profile, error) {
	if f.AccumulateFunc != nil {
		return f.AccumulateFunc(ctx, db, a)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[a.PlayerID]
	if !ok {
		p = &profiledb.Profile{PlayerID: a.PlayerID, DisplayName: a.DisplayName}
		f.profiles[a.PlayerID] = p
	}
	p.HighestScore = max(p.HighestScore, a.Score)
	p.CurrencyBalance += a.Currency
	p.GamesPlayed++
	cp := *p
	return &cp, nil
}

func (f *FakeProfileStore) Get(playerID string) (profiledb.Profile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[playerID]
	if !ok {
		return profiledb.Profile{}, false
	}
	return *p, true
}

var _ ProfileStore = (*FakeProfileStore)(nil)

// ------------------------
// Fake Cache
// ------------------------

type FakeCache struct {
	mu          sync.Mutex
	snapshots   map[string][]leaderboarddomain.Entry
	Invalidated []leaderboarddomain.Scope
}

func NewFakeCache() *FakeCache {
	return &FakeCache{snapshots: map[string][]leaderboarddomain.Entry{}}
}

func cacheKey(scope leaderboarddomain.Scope, week time.Time, n int) string {
	return fmt.Sprintf("%s:%s:%d", scope, week.Format(time.DateOnly), n)
}

func (c *FakeCache) Get(_ context.Context, scope leaderboarddomain.Scope, week time.Time, n int) ([]leaderboarddomain.Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.snapshots[cacheKey(scope, week, n)]
	return e, ok, nil
}

func (c *FakeCache) Set(_ context.Context, scope leaderboarddomain.Scope, week time.Time, n int, entries []leaderboarddomain.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[cacheKey(scope, week, n)] = entries
	return nil
}

func (c *FakeCache) Invalidate(_ context.Context, scopes ...leaderboarddomain.Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidated = append(c.Invalidated, scopes...)
	c.snapshots = map[string][]leaderboarddomain.Entry{}
	return nil
}

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu        sync.Mutex
	Published map[string][]*message.Message
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Published: map[string][]*message.Message{}}
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
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
