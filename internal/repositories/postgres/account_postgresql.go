package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mentortrack/mentorship-service/internal/cache"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
)

type AccountPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAccountPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AccountRepository {
	return &AccountPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Create creates a new account and invalidates list caches
func (a *AccountPostgreSQL) Create(ctx context.Context, account *models.Account) error {
	if err := a.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Account, "list:*")
	cache.SafeDelete(ctx, a.cacheManager.Exists, fmt.Sprintf("account:%s", account.ID))

	return nil
}

// GetByID retrieves an account by ID with caching
func (a *AccountPostgreSQL) GetByID(ctx context.Context, id string) (*models.Account, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var account models.Account

	err := a.cacheManager.Account.CacheOrExecute(ctx, cacheKey, &account, cache.AccountCacheConfig.TTL, func() (interface{}, error) {
		var dbAccount models.Account
		err := a.db.WithContext(ctx).First(&dbAccount, "id = ?", id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get account: %w", err)
		}
		return &dbAccount, nil
	})

	if err != nil {
		return nil, err
	}

	return &account, nil
}

// GetByEmail retrieves an account by email, uncached because email lookups
// back duplicate checks and identity verification
func (a *AccountPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := a.db.WithContext(ctx).First(&account, "email = ?", email).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

// GetByIDs retrieves multiple accounts in one query
func (a *AccountPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Account, error) {
	if len(ids) == 0 {
		return []*models.Account{}, nil
	}

	var accounts []*models.Account
	err := a.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return accounts, nil
}

// Update updates mutable account fields and invalidates caches
func (a *AccountPostgreSQL) Update(ctx context.Context, account *models.Account) error {
	if err := a.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", account.ID).Updates(map[string]interface{}{
		"full_name": account.FullName,
		"photo_ref": account.PhotoRef,
		"phone":     account.Phone,
	}).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	if err := a.cacheManager.InvalidateAccount(ctx, account.ID); err != nil {
		// Cache invalidation failure is not fatal
		_ = err
	}

	return nil
}

// UpdateRole writes only the role column
func (a *AccountPostgreSQL) UpdateRole(ctx context.Context, id string, role models.AccountRole) error {
	result := a.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update account role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.SafeDelete(ctx, a.cacheManager.Account, fmt.Sprintf("id:%s", id))
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Account, "list:*")

	return nil
}

// List retrieves accounts with filters and pagination
func (a *AccountPostgreSQL) List(ctx context.Context, filters repositories.AccountFilters) ([]*models.Account, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Account{})

	query = a.helpers.ApplyAccountFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var accounts []*models.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// ListByRole retrieves all accounts holding a role
func (a *AccountPostgreSQL) ListByRole(ctx context.Context, role models.AccountRole) ([]*models.Account, error) {
	var accounts []*models.Account
	err := a.db.WithContext(ctx).
		Where("role = ?", role).
		Order("full_name ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by role: %w", err)
	}
	return accounts, nil
}

// ExistsByID checks account existence with a short-lived cache
func (a *AccountPostgreSQL) ExistsByID(ctx context.Context, id string) (bool, error) {
	cacheKey := fmt.Sprintf("account:%s", id)
	if cached, err := a.cacheManager.Exists.GetString(ctx, cacheKey); err == nil {
		return cached == "1", nil
	}

	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}

	value := "0"
	if count > 0 {
		value = "1"
	}
	_ = a.cacheManager.Exists.SetString(ctx, cacheKey, value, cache.ExistsCacheConfig.TTL)

	return count > 0, nil
}

// ExistsByEmail checks whether an email is already registered
func (a *AccountPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// GetCredentialLink reads the owner's sealed second-identity record,
// never cached
func (a *AccountPostgreSQL) GetCredentialLink(ctx context.Context, accountID string) (*models.CredentialLink, error) {
	var link models.CredentialLink
	err := a.db.WithContext(ctx).First(&link, "account_id = ?", accountID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get credential link: %w", err)
	}
	return &link, nil
}

// SaveCredentialLink upserts the sealed second-identity record
func (a *AccountPostgreSQL) SaveCredentialLink(ctx context.Context, link *models.CredentialLink) error {
	err := a.db.WithContext(ctx).Save(link).Error
	if err != nil {
		return fmt.Errorf("failed to save credential link: %w", err)
	}
	return nil
}

func (a *AccountPostgreSQL) DeleteCredentialLink(ctx context.Context, accountID string) error {
	err := a.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&models.CredentialLink{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete credential link: %w", err)
	}
	return nil
}
