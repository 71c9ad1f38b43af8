package repository

import (
	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"gorm.io/gorm"
)

var themeColumns = map[string]bool{"name": true, "icon": true}

type ThemeRepository interface {
	FindAll() ([]model.Theme, error)
	FindByID(id uint) (*model.Theme, error)
	FindByName(name string) (*model.Theme, error)
	Search(term string, fields []string) ([]model.Theme, error)
	Count() (int64, error)
	Create(theme *model.Theme) error
	Update(theme *model.Theme) error
	Delete(id uint) error
}

type themeRepository struct {
	db *gorm.DB
}

func NewThemeRepository(db *gorm.DB) ThemeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) FindAll() ([]model.Theme, error) {
	logger.Debug("Finding all themes in database")

	themes := make([]model.Theme, 0)
	if err := r.db.Order("id ASC").Find(&themes).Error; err != nil {
		logger.Error("Failed to find themes in database", err)
		return nil, err
	}

	logger.Debug("Themes found in database", map[string]interface{}{
		"count": len(themes),
	})
	return themes, nil
}

func (r *themeRepository) FindByID(id uint) (*model.Theme, error) {
	logger.Debug("Finding theme by ID in database", map[string]interface{}{
		"theme_id": id,
	})

	var theme model.Theme
	if err := r.db.First(&theme, id).Error; err != nil {
		logger.Error("Failed to find theme by ID in database", err, map[string]interface{}{
			"theme_id": id,
		})
		return nil, err
	}
	return &theme, nil
}

// FindByName returns the first theme (lowest id) named name.
func (r *themeRepository) FindByName(name string) (*model.Theme, error) {
	var theme model.Theme
	if err := r.db.Where("name = ?", name).Order("id ASC").First(&theme).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *themeRepository) Search(term string, fields []string) ([]model.Theme, error) {
	logger.Debug("Searching themes in database", map[string]interface{}{
		"term":   term,
		"fields": fields,
	})

	query, err := whereContainsAny(r.db.Model(&model.Theme{}), term, fields, themeColumns)
	if err != nil {
		return nil, err
	}

	themes := make([]model.Theme, 0)
	if err := query.Order("id ASC").Find(&themes).Error; err != nil {
		logger.Error("Failed to search themes in database", err, map[string]interface{}{
			"term": term,
		})
		return nil, err
	}
	return themes, nil
}

func (r *themeRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Theme{}).Count(&count).Error
	return count, err
}

func (r *themeRepository) Create(theme *model.Theme) error {
	logger.Debug("Creating theme in database", map[string]interface{}{
		"name": theme.Name,
	})

	if err := r.db.Create(theme).Error; err != nil {
		logger.Error("Failed to create theme in database", err, map[string]interface{}{
			"name": theme.Name,
		})
		return err
	}

	logger.Debug("Theme created in database", map[string]interface{}{
		"theme_id": theme.ID,
	})
	return nil
}

func (r *themeRepository) Update(theme *model.Theme) error {
	logger.Debug("Updating theme in database", map[string]interface{}{
		"theme_id": theme.ID,
	})

	if err := r.db.Save(theme).Error; err != nil {
		logger.Error("Failed to update theme in database", err, map[string]interface{}{
			"theme_id": theme.ID,
		})
		return err
	}
	return nil
}

func (r *themeRepository) Delete(id uint) error {
	logger.Debug("Deleting theme from database", map[string]interface{}{
		"theme_id": id,
	})

	result := r.db.Delete(&model.Theme{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete theme from database", result.Error, map[string]interface{}{
			"theme_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
