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

type MenteePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewMenteePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.MenteeRepository {
	return &MenteePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// CreateProfile creates the mentee-scoped record for an account
func (m *MenteePostgreSQL) CreateProfile(ctx context.Context, profile *models.MenteeProfile) error {
	if err := m.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create mentee profile: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, m.cacheManager.Mentee, "list:*")
	cache.SafeInvalidatePattern(ctx, m.cacheManager.Mentee, "mentor:*")

	return nil
}

// GetProfile retrieves a mentee profile with its account and class, cached
func (m *MenteePostgreSQL) GetProfile(ctx context.Context, accountID string) (*models.MenteeProfile, error) {
	cacheKey := fmt.Sprintf("id:%s", accountID)
	var profile models.MenteeProfile

	err := m.cacheManager.Mentee.CacheOrExecute(ctx, cacheKey, &profile, cache.MenteeCacheConfig.TTL, func() (interface{}, error) {
		var dbProfile models.MenteeProfile
		err := m.db.WithContext(ctx).
			Preload("Account").
			Preload("Class").
			First(&dbProfile, "account_id = ?", accountID).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get mentee profile: %w", err)
		}
		return &dbProfile, nil
	})

	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// UpdateProfile updates profile fields owned by the mentee
func (m *MenteePostgreSQL) UpdateProfile(ctx context.Context, profile *models.MenteeProfile) error {
	if err := m.db.WithContext(ctx).Model(&models.MenteeProfile{}).
		Where("account_id = ?", profile.AccountID).
		Updates(map[string]interface{}{
			"enrollment_no": profile.EnrollmentNo,
			"year":          profile.Year,
			"class_id":      profile.ClassID,
			"semester":      profile.Semester,
		}).Error; err != nil {
		return fmt.Errorf("failed to update mentee profile: %w", err)
	}

	cache.InvalidateMenteeCache(ctx, m.cacheManager, profile.AccountID)

	return nil
}

// List retrieves mentee profiles with filters and pagination
func (m *MenteePostgreSQL) List(ctx context.Context, filters repositories.MenteeFilters) ([]*models.MenteeProfile, int64, error) {
	query := m.db.WithContext(ctx).Model(&models.MenteeProfile{})

	query = m.helpers.ApplyMenteeFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = m.helpers.ApplyPaginationAndSort(query, "enrollment_no", "asc", filters.Limit, filters.Offset)

	var profiles []*models.MenteeProfile
	if err := query.Preload("Account").Preload("Class").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

// ListByMentor retrieves mentees whose primary assignment is the mentor
func (m *MenteePostgreSQL) ListByMentor(ctx context.Context, mentorID string) ([]*models.MenteeProfile, error) {
	var profiles []*models.MenteeProfile
	err := m.db.WithContext(ctx).
		Preload("Account").
		Where("primary_mentor_id = ?", mentorID).
		Order("enrollment_no ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mentees by mentor: %w", err)
	}
	return profiles, nil
}

// ListBySlotHolder retrieves mentees for which the mentor occupies the slot
func (m *MenteePostgreSQL) ListBySlotHolder(ctx context.Context, slot models.DelegationSlot, mentorID string) ([]*models.MenteeProfile, error) {
	column := "guide_id"
	if slot == models.SlotCoGuide {
		column = "co_guide_id"
	}

	var profiles []*models.MenteeProfile
	err := m.db.WithContext(ctx).
		Preload("Account").
		Where(column+" = ?", mentorID).
		Order("enrollment_no ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mentees by slot holder: %w", err)
	}
	return profiles, nil
}

// SetPrimaryMentor writes only the primary assignment column. A nil mentor
// clears the assignment.
func (m *MenteePostgreSQL) SetPrimaryMentor(ctx context.Context, accountID string, mentorID *string) error {
	result := m.db.WithContext(ctx).Model(&models.MenteeProfile{}).
		Where("account_id = ?", accountID).
		Update("primary_mentor_id", mentorID)
	if result.Error != nil {
		return fmt.Errorf("failed to set primary mentor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.InvalidateMenteeCache(ctx, m.cacheManager, accountID)

	return nil
}

// SetSlot writes only the requested delegation slot column; the other slot
// is never touched. A nil holder vacates the slot.
func (m *MenteePostgreSQL) SetSlot(ctx context.Context, accountID string, slot models.DelegationSlot, holderID *string) error {
	column := "guide_id"
	if slot == models.SlotCoGuide {
		column = "co_guide_id"
	}

	result := m.db.WithContext(ctx).Model(&models.MenteeProfile{}).
		Where("account_id = ?", accountID).
		Update(column, holderID)
	if result.Error != nil {
		return fmt.Errorf("failed to set delegation slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.InvalidateMenteeCache(ctx, m.cacheManager, accountID)

	return nil
}

// ReplaceGrant overwrites all grant columns in one statement so a reissue
// also resets the consumed flag
func (m *MenteePostgreSQL) ReplaceGrant(ctx context.Context, accountID string, grant models.ProfileEditGrant) error {
	result := m.db.WithContext(ctx).Model(&models.MenteeProfile{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"edit_allowed_at": grant.AllowedAt,
			"edit_expires_at": grant.ExpiresAt,
			"edit_allowed_by": grant.AllowedBy,
			"edit_consumed":   grant.Consumed,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to replace edit grant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.SafeDelete(ctx, m.cacheManager.Mentee, fmt.Sprintf("id:%s", accountID))

	return nil
}

// SetGrantConsumed flips only the consumed flag
func (m *MenteePostgreSQL) SetGrantConsumed(ctx context.Context, accountID string, consumed bool) error {
	result := m.db.WithContext(ctx).Model(&models.MenteeProfile{}).
		Where("account_id = ?", accountID).
		Update("edit_consumed", consumed)
	if result.Error != nil {
		return fmt.Errorf("failed to set grant consumed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.SafeDelete(ctx, m.cacheManager.Mentee, fmt.Sprintf("id:%s", accountID))

	return nil
}

// ExistsByEnrollment checks whether any mentee already carries the
// enrollment number
func (m *MenteePostgreSQL) ExistsByEnrollment(ctx context.Context, enrollmentNo string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&models.MenteeProfile{}).
		Where("enrollment_no = ?", enrollmentNo).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment existence: %w", err)
	}
	return count > 0, nil
}
