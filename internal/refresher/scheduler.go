package refresher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/models"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/tracker"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/config"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/logging"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/telemetry"
)

// AccountStore is the slice of the store the scheduler needs
type AccountStore interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	UpdateAccountRank(ctx context.Context, username, hashtag, region, rank string, rr int) error
}

// RankFetcher looks up the current rank for one identity
type RankFetcher interface {
	FetchRank(ctx context.Context, username, hashtag, region string) (tracker.RankResult, error)
}

// Scheduler walks all stored accounts at a fixed interval and writes fresh
// rank data back through the store. It owns no global state; it is
// constructed once and cancelled through the context passed to Run.
type Scheduler struct {
	store        AccountStore
	fetcher      RankFetcher
	interval     time.Duration
	accountDelay time.Duration
	logger       *zap.Logger
}

// New creates a new refresh scheduler
func New(cfg *config.RefresherConfig, store AccountStore, fetcher RankFetcher) *Scheduler {
	return &Scheduler{
		store:        store,
		fetcher:      fetcher,
		interval:     cfg.Interval,
		accountDelay: cfg.AccountDelay,
		logger:       logging.WithComponent("refresher"),
	}
}

// Run sweeps immediately, then repeats after every interval until the
// context is cancelled. It never terminates on its own.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting rank refresher",
		zap.Duration("interval", s.interval),
		zap.Duration("account_delay", s.accountDelay))

	for {
		s.sweep(ctx)
		if !s.wait(ctx, s.interval) {
			s.logger.Info("Rank refresher stopped")
			return ctx.Err()
		}
	}
}

// sweep snapshots the account list once and refreshes each entry in order.
// A failing account is logged and skipped; the next sweep retries it.
func (s *Scheduler) sweep(ctx context.Context) {
	ctx, span := telemetry.StartSpan(ctx, "refresher.sweep")
	defer span.End()

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts for refresh", zap.Error(err))
		return
	}
	if len(accounts) == 0 {
		s.logger.Debug("No saved accounts to refresh")
		return
	}

	s.logger.Info("Starting refresh sweep", zap.Int("accounts", len(accounts)))

	refreshed := 0
	for _, account := range accounts {
		// Cancellation is observed before each account so shutdown latency
		// is bounded by one fetch plus the inter-account delay
		if ctx.Err() != nil {
			s.logger.Info("Refresh sweep cancelled", zap.Int("refreshed", refreshed))
			return
		}

		result, err := s.fetcher.FetchRank(ctx, account.Username, account.Hashtag, account.Region)
		switch {
		case err != nil:
			s.logger.Warn("Could not refresh account",
				zap.String("player", account.PlayerName()),
				zap.Error(err))
		case !result.Resolved():
			// An unresolved rank never overwrites a known-good value
			s.logger.Warn("Rank unresolved, keeping stored value",
				zap.String("player", account.PlayerName()))
		default:
			if err := s.store.UpdateAccountRank(ctx,
				account.Username, account.Hashtag, account.Region,
				result.Rank, result.RR); err != nil {
				s.logger.Error("Failed to store refreshed rank",
					zap.String("player", account.PlayerName()),
					zap.Error(err))
			} else {
				refreshed++
				s.logger.Debug("Refreshed account",
					zap.String("player", account.PlayerName()),
					zap.String("rank", result.Rank),
					zap.Int("rr", result.RR))
			}
		}

		// Fixed delay between accounts to bound the outbound request rate
		if !s.wait(ctx, s.accountDelay) {
			s.logger.Info("Refresh sweep cancelled", zap.Int("refreshed", refreshed))
			return
		}
	}

	s.logger.Info("Refresh sweep complete",
		zap.Int("accounts", len(accounts)),
		zap.Int("refreshed", refreshed))
}

// wait sleeps for the given duration, returning false if the context is
// cancelled first
func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
