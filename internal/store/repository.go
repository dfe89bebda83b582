package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hardev1237/Valorant-Rank-Fetcher/internal/models"
)

// Repository provides account and section persistence. Every method runs in
// its own short-lived transaction and commits before returning, so the
// refresher's fetch-then-write cycle never blocks concurrent API calls.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(database *DB) *Repository {
	return &Repository{db: database.DB}
}

// Migrate creates the schema additively and ensures the Default section exists
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.Account{}, &models.Section{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	defaultSection := models.Section{Name: models.DefaultSection}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaultSection).Error; err != nil {
		return fmt.Errorf("failed to ensure default section: %w", err)
	}
	return nil
}

// ListAccounts retrieves all accounts, ordered by username ascending
func (r *Repository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Order("username ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListSections retrieves all sections, ordered by name ascending
func (r *Repository) ListSections(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// GetAccount retrieves one account by its identity triple, nil when absent
func (r *Repository) GetAccount(ctx context.Context, username, hashtag, region string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).
		Where("username = ? AND hashtag = ? AND region = ?", username, hashtag, region).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// UpsertAccount inserts or fully replaces an account keyed on the identity
// triple; all columns of an existing row are overwritten, never merged.
func (r *Repository) UpsertAccount(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "username"}, {Name: "hashtag"}, {Name: "region"},
			},
			UpdateAll: true,
		}).
		Create(account).Error
}

// DeleteAccount removes an account; deleting an absent identity is a no-op
func (r *Repository) DeleteAccount(ctx context.Context, username, hashtag, region string) error {
	return r.db.WithContext(ctx).
		Where("username = ? AND hashtag = ? AND region = ?", username, hashtag, region).
		Delete(&models.Account{}).Error
}

// CreateSection creates a section; creating an existing one is a no-op
func (r *Repository) CreateSection(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Section{Name: name}).Error
}

// DeleteSection reassigns member accounts to the Default section and removes
// the section row as one atomic unit. Protecting the Default section is the
// caller's responsibility.
func (r *Repository) DeleteSection(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Account{}).
			Where("section = ?", name).
			Update("section", models.DefaultSection).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&models.Section{}).Error
	})
}

// Health pings the underlying connection
func (r *Repository) Health(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// UpdateAccountRank updates only the rank and rr columns of one account;
// updating an absent identity is a silent no-op.
func (r *Repository) UpdateAccountRank(ctx context.Context, username, hashtag, region, rank string, rr int) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("username = ? AND hashtag = ? AND region = ?", username, hashtag, region).
		Updates(map[string]interface{}{"rank": rank, "rr": rr}).Error
}
