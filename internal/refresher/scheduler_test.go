package refresher

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/models"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/tracker"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/config"
)

type rankUpdate struct {
	username string
	rank     string
	rr       int
}

type fakeStore struct {
	mu       sync.Mutex
	accounts []models.Account
	updates  []rankUpdate
	listErr  error
}

func (f *fakeStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.accounts, nil
}

func (f *fakeStore) UpdateAccountRank(ctx context.Context, username, hashtag, region, rank string, rr int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, rankUpdate{username: username, rank: rank, rr: rr})
	return nil
}

func (f *fakeStore) recorded() []rankUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rankUpdate(nil), f.updates...)
}

type fakeFetcher struct {
	results map[string]tracker.RankResult
	errs    map[string]error
	// onFetch runs before every lookup, used to trigger cancellation mid-sweep
	onFetch func(username string)
}

func (f *fakeFetcher) FetchRank(ctx context.Context, username, hashtag, region string) (tracker.RankResult, error) {
	if f.onFetch != nil {
		f.onFetch(username)
	}
	if err, ok := f.errs[username]; ok {
		return tracker.RankResult{}, err
	}
	return f.results[username], nil
}

func testAccounts(usernames ...string) []models.Account {
	accounts := make([]models.Account, 0, len(usernames))
	for _, u := range usernames {
		accounts = append(accounts, models.Account{Username: u, Hashtag: "0001", Region: "na"})
	}
	return accounts
}

func newTestScheduler(store AccountStore, fetcher RankFetcher) *Scheduler {
	return New(&config.RefresherConfig{
		Interval:     time.Hour, // Tests drive sweeps directly
		AccountDelay: 0,
	}, store, fetcher)
}

func TestSweepUpdatesAllAccounts(t *testing.T) {
	store := &fakeStore{accounts: testAccounts("alpha", "bravo")}
	fetcher := &fakeFetcher{results: map[string]tracker.RankResult{
		"alpha": {Rank: "Diamond 2", RR: 47},
		"bravo": {Rank: "Gold 1", RR: 12},
	}}

	scheduler := newTestScheduler(store, fetcher)
	scheduler.sweep(context.Background())

	updates := store.recorded()
	if len(updates) != 2 {
		t.Fatalf("Expected 2 updates, got %d", len(updates))
	}
	if updates[0] != (rankUpdate{"alpha", "Diamond 2", 47}) {
		t.Errorf("Unexpected first update: %+v", updates[0])
	}
	if updates[1] != (rankUpdate{"bravo", "Gold 1", 12}) {
		t.Errorf("Unexpected second update: %+v", updates[1])
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	store := &fakeStore{accounts: testAccounts("alpha", "bravo", "charlie")}
	fetcher := &fakeFetcher{
		results: map[string]tracker.RankResult{
			"alpha":   {Rank: "Diamond 2", RR: 47},
			"charlie": {Rank: "Iron 3", RR: 2},
		},
		errs: map[string]error{
			"bravo": &tracker.FetchError{Kind: tracker.KindTransport, Err: fmt.Errorf("connection refused")},
		},
	}

	scheduler := newTestScheduler(store, fetcher)
	scheduler.sweep(context.Background())

	updates := store.recorded()
	if len(updates) != 2 {
		t.Fatalf("Expected failing account to be skipped, got %d updates", len(updates))
	}
	if updates[0].username != "alpha" || updates[1].username != "charlie" {
		t.Errorf("Unexpected update order: %+v", updates)
	}
}

func TestSweepSkipsUnresolvedRank(t *testing.T) {
	store := &fakeStore{accounts: testAccounts("alpha")}
	fetcher := &fakeFetcher{results: map[string]tracker.RankResult{
		"alpha": {}, // Body yielded nothing usable
	}}

	scheduler := newTestScheduler(store, fetcher)
	scheduler.sweep(context.Background())

	if updates := store.recorded(); len(updates) != 0 {
		t.Errorf("Unresolved rank must not be written, got %+v", updates)
	}
}

func TestSweepStopsOnCancellation(t *testing.T) {
	store := &fakeStore{accounts: testAccounts("alpha", "bravo", "charlie")}

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &fakeFetcher{
		results: map[string]tracker.RankResult{
			"alpha":   {Rank: "Diamond 2", RR: 47},
			"bravo":   {Rank: "Gold 1", RR: 12},
			"charlie": {Rank: "Iron 3", RR: 2},
		},
		onFetch: func(username string) {
			if username == "bravo" {
				cancel()
			}
		},
	}

	scheduler := newTestScheduler(store, fetcher)
	scheduler.sweep(ctx)

	// The first account was written before cancellation and stays written;
	// everything after the cancel point is abandoned
	updates := store.recorded()
	if len(updates) < 1 || len(updates) > 2 {
		t.Fatalf("Expected 1-2 updates around the cancel point, got %d", len(updates))
	}
	if updates[0] != (rankUpdate{"alpha", "Diamond 2", 47}) {
		t.Errorf("Earlier update should be retained: %+v", updates[0])
	}
	for _, u := range updates {
		if u.username == "charlie" {
			t.Error("Accounts after the cancel point must not be processed")
		}
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	store := &fakeStore{}
	fetcher := &fakeFetcher{}
	scheduler := newTestScheduler(store, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- scheduler.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after cancellation")
	}
}
