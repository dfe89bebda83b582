package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/cache"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/models"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/tracker"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/telemetry"
)

// getAccounts lists all tracked accounts grouped by section
func (r *Router) getAccounts(c *gin.Context) {
	accounts, err := r.store.ListAccounts(c.Request.Context())
	if err != nil {
		r.logger.Error("Failed to list accounts", zap.Error(err))
		respondError(c, storeError(err))
		return
	}
	c.JSON(http.StatusOK, groupAccountsBySection(accounts))
}

// getSections lists all sections
func (r *Router) getSections(c *gin.Context) {
	sections, err := r.store.ListSections(c.Request.Context())
	if err != nil {
		r.logger.Error("Failed to list sections", zap.Error(err))
		respondError(c, storeError(err))
		return
	}
	c.JSON(http.StatusOK, sections)
}

// handleCheck performs an on-demand rank lookup without persisting anything
func (r *Router) handleCheck(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "api.check")
	defer span.End()

	username := c.PostForm("username")
	hashtag := c.PostForm("hashtag")
	region := c.DefaultPostForm("region", "na")

	if username == "" || hashtag == "" {
		respondError(c, errIdentityRequired)
		return
	}

	playerName := username + "#" + hashtag

	// Serve a fresh check from cache when available
	if entry, err := r.cache.GetRank(ctx, username, hashtag, region); err == nil && entry != nil {
		c.JSON(http.StatusOK, gin.H{
			"playerName": playerName,
			"rank":       entry.Rank,
			"rr":         entry.RR,
		})
		return
	} else if err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		r.logger.Warn("Rank cache lookup failed", zap.Error(err))
	}

	result, err := r.fetcher.FetchRank(ctx, username, hashtag, region)
	if err != nil {
		var fetchErr *tracker.FetchError
		if errors.As(err, &fetchErr) && fetchErr.Kind == tracker.KindHTTPStatus {
			respondError(c, playerNotFoundError(fetchErr.Status))
			return
		}
		respondError(c, storeError(err))
		return
	}

	if !result.Resolved() {
		respondError(c, errUnparsableRank)
		return
	}

	entry := cache.RankEntry{Rank: result.Rank, RR: result.RR}
	if err := r.cache.SetRank(ctx, username, hashtag, region, entry, r.checkTTL); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		r.logger.Warn("Rank cache write failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"playerName": playerName,
		"rank":       result.Rank,
		"rr":         result.RR,
	})
}

// handleSave upserts an account, fetching its current rank first
func (r *Router) handleSave(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "api.save")
	defer span.End()

	account := &models.Account{
		Username:      c.PostForm("username"),
		Hashtag:       c.PostForm("hashtag"),
		Region:        c.DefaultPostForm("region", "na"),
		LoginUsername: c.PostForm("account_username"),
		LoginPassword: c.PostForm("password"),
		Section:       c.DefaultPostForm("section", models.DefaultSection),
	}

	if account.Username == "" || account.Hashtag == "" {
		respondActionError(c, errIdentityRequired)
		return
	}

	if account.Section == "" {
		account.Section = models.DefaultSection
	}
	// The account's section must exist; creating it is idempotent
	if account.Section != models.DefaultSection {
		if err := r.store.CreateSection(ctx, account.Section); err != nil {
			respondActionError(c, storeError(err))
			return
		}
	}

	// Fetch the current rank before saving
	result, err := r.fetcher.FetchRank(ctx, account.Username, account.Hashtag, account.Region)
	if err != nil {
		respondActionError(c, storeError(err))
		return
	}

	if result.Resolved() {
		account.Rank = &result.Rank
		account.RR = result.RR
	} else {
		// Never let an unresolved rank clobber a known-good stored value
		existing, err := r.store.GetAccount(ctx, account.Username, account.Hashtag, account.Region)
		if err != nil {
			respondActionError(c, storeError(err))
			return
		}
		if existing != nil {
			account.Rank = existing.Rank
			account.RR = existing.RR
		}
		r.logger.Warn("Saving account with unresolved rank",
			zap.String("player", account.PlayerName()))
	}

	if err := r.store.UpsertAccount(ctx, account); err != nil {
		r.logger.Error("Failed to save account", zap.Error(err))
		respondActionError(c, storeError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleDelete removes an account by its identity triple
func (r *Router) handleDelete(c *gin.Context) {
	username := c.PostForm("username")
	hashtag := c.PostForm("hashtag")
	region := c.DefaultPostForm("region", "na")

	if err := r.store.DeleteAccount(c.Request.Context(), username, hashtag, region); err != nil {
		r.logger.Error("Failed to delete account", zap.Error(err))
		respondActionError(c, storeError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleCreateSection creates a section; existing names are a no-op
func (r *Router) handleCreateSection(c *gin.Context) {
	name := c.PostForm("section_name")
	if name == "" {
		respondActionError(c, errEmptySectionName)
		return
	}

	if err := r.store.CreateSection(c.Request.Context(), name); err != nil {
		r.logger.Error("Failed to create section", zap.Error(err))
		respondActionError(c, storeError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleDeleteSection deletes a section, moving its accounts to Default.
// The Default section itself is protected.
func (r *Router) handleDeleteSection(c *gin.Context) {
	name := c.PostForm("section_name")
	if name == "" || name == models.DefaultSection {
		respondActionError(c, errProtectedSection)
		return
	}

	if err := r.store.DeleteSection(c.Request.Context(), name); err != nil {
		r.logger.Error("Failed to delete section", zap.Error(err))
		respondActionError(c, storeError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// groupAccountsBySection buckets accounts by their section for the UI
func groupAccountsBySection(accounts []models.Account) map[string][]models.Account {
	grouped := make(map[string][]models.Account)
	for _, account := range accounts {
		section := account.Section
		if section == "" {
			section = models.DefaultSection
		}
		grouped[section] = append(grouped[section], account)
	}
	return grouped
}
