package repository

import (
	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"gorm.io/gorm"
)

var ageGroupColumns = map[string]bool{"name": true, "range": true, "color": true}

type AgeGroupRepository interface {
	FindAll() ([]model.AgeGroup, error)
	FindByID(id uint) (*model.AgeGroup, error)
	FindByRange(code string) (*model.AgeGroup, error)
	Search(term string, fields []string) ([]model.AgeGroup, error)
	Count() (int64, error)
	Create(ageGroup *model.AgeGroup) error
	Update(ageGroup *model.AgeGroup) error
	Delete(id uint) error
}

type ageGroupRepository struct {
	db *gorm.DB
}

func NewAgeGroupRepository(db *gorm.DB) AgeGroupRepository {
	return &ageGroupRepository{db: db}
}

func (r *ageGroupRepository) FindAll() ([]model.AgeGroup, error) {
	logger.Debug("Finding all age groups in database")

	ageGroups := make([]model.AgeGroup, 0)
	if err := r.db.Order("id ASC").Find(&ageGroups).Error; err != nil {
		logger.Error("Failed to find age groups in database", err)
		return nil, err
	}

	logger.Debug("Age groups found in database", map[string]interface{}{
		"count": len(ageGroups),
	})
	return ageGroups, nil
}

func (r *ageGroupRepository) FindByID(id uint) (*model.AgeGroup, error) {
	logger.Debug("Finding age group by ID in database", map[string]interface{}{
		"age_group_id": id,
	})

	var ageGroup model.AgeGroup
	if err := r.db.First(&ageGroup, id).Error; err != nil {
		logger.Error("Failed to find age group by ID in database", err, map[string]interface{}{
			"age_group_id": id,
		})
		return nil, err
	}
	return &ageGroup, nil
}

// FindByRange returns the first age group (lowest id) carrying code.
func (r *ageGroupRepository) FindByRange(code string) (*model.AgeGroup, error) {
	var ageGroup model.AgeGroup
	if err := r.db.Where(`"range" = ?`, code).Order("id ASC").First(&ageGroup).Error; err != nil {
		return nil, err
	}
	return &ageGroup, nil
}

func (r *ageGroupRepository) Search(term string, fields []string) ([]model.AgeGroup, error) {
	logger.Debug("Searching age groups in database", map[string]interface{}{
		"term":   term,
		"fields": fields,
	})

	query, err := whereContainsAny(r.db.Model(&model.AgeGroup{}), term, fields, ageGroupColumns)
	if err != nil {
		return nil, err
	}

	ageGroups := make([]model.AgeGroup, 0)
	if err := query.Order("id ASC").Find(&ageGroups).Error; err != nil {
		logger.Error("Failed to search age groups in database", err, map[string]interface{}{
			"term": term,
		})
		return nil, err
	}
	return ageGroups, nil
}

func (r *ageGroupRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.AgeGroup{}).Count(&count).Error
	return count, err
}

func (r *ageGroupRepository) Create(ageGroup *model.AgeGroup) error {
	logger.Debug("Creating age group in database", map[string]interface{}{
		"name":  ageGroup.Name,
		"range": ageGroup.Range,
	})

	if err := r.db.Create(ageGroup).Error; err != nil {
		logger.Error("Failed to create age group in database", err, map[string]interface{}{
			"name": ageGroup.Name,
		})
		return err
	}

	logger.Debug("Age group created in database", map[string]interface{}{
		"age_group_id": ageGroup.ID,
	})
	return nil
}

func (r *ageGroupRepository) Update(ageGroup *model.AgeGroup) error {
	logger.Debug("Updating age group in database", map[string]interface{}{
		"age_group_id": ageGroup.ID,
	})

	if err := r.db.Save(ageGroup).Error; err != nil {
		logger.Error("Failed to update age group in database", err, map[string]interface{}{
			"age_group_id": ageGroup.ID,
		})
		return err
	}
	return nil
}

func (r *ageGroupRepository) Delete(id uint) error {
	logger.Debug("Deleting age group from database", map[string]interface{}{
		"age_group_id": id,
	})

	result := r.db.Delete(&model.AgeGroup{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete age group from database", result.Error, map[string]interface{}{
			"age_group_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Age group deleted from database", map[string]interface{}{
		"age_group_id": id,
	})
	return nil
}
