package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
)

type ClassPostgreSQL struct {
	db *gorm.DB
}

func NewClassPostgreSQL(db *gorm.DB) repositories.ClassRepository {
	return &ClassPostgreSQL{db: db}
}

func (c *ClassPostgreSQL) Create(ctx context.Context, class *models.MentorClass) error {
	if err := c.db.WithContext(ctx).Create(class).Error; err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, id uint) (*models.MentorClass, error) {
	var class models.MentorClass
	if err := c.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}

	if err := c.fillMenteeCount(ctx, &class); err != nil {
		return nil, err
	}

	return &class, nil
}

func (c *ClassPostgreSQL) Update(ctx context.Context, class *models.MentorClass) error {
	if err := c.db.WithContext(ctx).Model(&models.MentorClass{}).
		Where("id = ?", class.ID).
		Updates(map[string]interface{}{
			"name": class.Name,
			"year": class.Year,
		}).Error; err != nil {
		return fmt.Errorf("failed to update class: %w", err)
	}
	return nil
}

// Delete removes the class and detaches its mentees; their assignment and
// delegation state is untouched.
func (c *ClassPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := c.db.WithContext(ctx).Model(&models.MenteeProfile{}).
		Where("class_id = ?", id).
		Update("class_id", nil).Error; err != nil {
		return fmt.Errorf("failed to detach mentees from class: %w", err)
	}

	if err := c.db.WithContext(ctx).Delete(&models.MentorClass{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}
	return nil
}

func (c *ClassPostgreSQL) ListByMentor(ctx context.Context, mentorID string) ([]*models.MentorClass, error) {
	var classes []*models.MentorClass
	err := c.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("year DESC, name ASC").
		Find(&classes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}

	for _, class := range classes {
		if err := c.fillMenteeCount(ctx, class); err != nil {
			return nil, err
		}
	}

	return classes, nil
}

func (c *ClassPostgreSQL) fillMenteeCount(ctx context.Context, class *models.MentorClass) error {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.MenteeProfile{}).
		Where("class_id = ?", class.ID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to count class mentees: %w", err)
	}
	class.MenteeCount = int(count)
	return nil
}
