package repository

import (
	"fmt"

	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"gorm.io/gorm"
)

// storyOrder is the default story ordering: newest first, ties by id.
const storyOrder = "created_at DESC, id DESC"

var storyColumns = map[string]bool{
	"title": true, "content": true, "summary": true, "image_url": true,
	"age_group": true, "theme": true,
}

// distinctStoryColumns are the columns admin filters may offer choices for.
var distinctStoryColumns = map[string]bool{"age_group": true, "theme": true}

// StoryFilter narrows an admin listing. Nil pointers leave a column unfiltered.
type StoryFilter struct {
	Search       string
	SearchFields []string
	AgeGroup     *string
	Theme        *string
	IsFeatured   *bool
}

// StoryListUpdate is one row of an admin list-view edit.
type StoryListUpdate struct {
	ID         uint
	IsFeatured bool
	Rating     int
}

type StoryRepository interface {
	FindAll() ([]model.Story, error)
	FindFeatured() ([]model.Story, error)
	FindRecent(limit int) ([]model.Story, error)
	FindByID(id uint) (*model.Story, error)
	FindByAgeGroup(code string) ([]model.Story, error)
	FindByTheme(name string) ([]model.Story, error)
	FindWithFilter(filter StoryFilter) ([]model.Story, error)
	FindOrphans() ([]model.Story, error)
	DistinctValues(column string) ([]string, error)
	Count() (int64, error)
	Create(story *model.Story) error
	CreateBatch(stories []model.Story) error
	Update(story *model.Story) error
	UpdateListFields(id uint, isFeatured bool, rating int) error
	UpdateListFieldsBatch(updates []StoryListUpdate) error
	Delete(id uint) error
}

type storyRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) find(query *gorm.DB, op string, fields map[string]interface{}) ([]model.Story, error) {
	stories := make([]model.Story, 0)
	if err := query.Order(storyOrder).Find(&stories).Error; err != nil {
		logger.Error("Failed to "+op+" in database", err, fields)
		return nil, err
	}

	logger.Debug("Stories found in database", map[string]interface{}{
		"operation": op,
		"count":     len(stories),
	})
	return stories, nil
}

func (r *storyRepository) FindAll() ([]model.Story, error) {
	logger.Debug("Finding all stories in database")
	return r.find(r.db, "find all stories", nil)
}

func (r *storyRepository) FindFeatured() ([]model.Story, error) {
	logger.Debug("Finding featured stories in database")
	return r.find(r.db.Where("is_featured = ?", true), "find featured stories", nil)
}

// FindRecent returns at most limit stories, newest first. A negative limit
// means no limit.
func (r *storyRepository) FindRecent(limit int) ([]model.Story, error) {
	logger.Debug("Finding recent stories in database", map[string]interface{}{
		"limit": limit,
	})

	if limit == 0 {
		return make([]model.Story, 0), nil
	}
	query := r.db
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.find(query, "find recent stories", map[string]interface{}{
		"limit": limit,
	})
}

func (r *storyRepository) FindByID(id uint) (*model.Story, error) {
	logger.Debug("Finding story by ID in database", map[string]interface{}{
		"story_id": id,
	})

	var story model.Story
	if err := r.db.First(&story, id).Error; err != nil {
		logger.Error("Failed to find story by ID in database", err, map[string]interface{}{
			"story_id": id,
		})
		return nil, err
	}

	logger.Debug("Story found by ID in database", map[string]interface{}{
		"story_id": story.ID,
		"title":    story.Title,
	})
	return &story, nil
}

func (r *storyRepository) FindByAgeGroup(code string) ([]model.Story, error) {
	logger.Debug("Finding stories by age group in database", map[string]interface{}{
		"age_group": code,
	})
	return r.find(r.db.Where("age_group = ?", code), "find stories by age group", map[string]interface{}{
		"age_group": code,
	})
}

func (r *storyRepository) FindByTheme(name string) ([]model.Story, error) {
	logger.Debug("Finding stories by theme in database", map[string]interface{}{
		"theme": name,
	})
	return r.find(r.db.Where("theme = ?", name), "find stories by theme", map[string]interface{}{
		"theme": name,
	})
}

func (r *storyRepository) FindWithFilter(filter StoryFilter) ([]model.Story, error) {
	logger.Debug("Finding stories with filter in database", map[string]interface{}{
		"search":      filter.Search,
		"age_group":   filter.AgeGroup,
		"theme":       filter.Theme,
		"is_featured": filter.IsFeatured,
	})

	query, err := whereContainsAny(r.db.Model(&model.Story{}), filter.Search, filter.SearchFields, storyColumns)
	if err != nil {
		return nil, err
	}
	if filter.AgeGroup != nil {
		query = query.Where("age_group = ?", *filter.AgeGroup)
	}
	if filter.Theme != nil {
		query = query.Where("theme = ?", *filter.Theme)
	}
	if filter.IsFeatured != nil {
		query = query.Where("is_featured = ?", *filter.IsFeatured)
	}
	return r.find(query, "find stories with filter", nil)
}

// FindOrphans returns stories whose age group code or theme name matches no
// stored AgeGroup or Theme.
func (r *storyRepository) FindOrphans() ([]model.Story, error) {
	logger.Debug("Finding orphaned stories in database")

	query := r.db.Where(`age_group NOT IN (SELECT "range" FROM age_groups)`).
		Or("theme NOT IN (SELECT name FROM themes)")
	return r.find(query, "find orphaned stories", nil)
}

// DistinctValues lists the distinct values stored in column, sorted.
func (r *storyRepository) DistinctValues(column string) ([]string, error) {
	if !distinctStoryColumns[column] {
		return nil, fmt.Errorf("column %q has no value list", column)
	}

	values := make([]string, 0)
	if err := r.db.Model(&model.Story{}).Distinct(column).Order(column+" ASC").Pluck(column, &values).Error; err != nil {
		logger.Error("Failed to list distinct story values", err, map[string]interface{}{
			"column": column,
		})
		return nil, err
	}
	return values, nil
}

func (r *storyRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Story{}).Count(&count).Error
	return count, err
}

func (r *storyRepository) Create(story *model.Story) error {
	logger.Debug("Creating story in database", map[string]interface{}{
		"title":     story.Title,
		"age_group": story.AgeGroup,
		"theme":     story.Theme,
	})

	if err := r.db.Create(story).Error; err != nil {
		logger.Error("Failed to create story in database", err, map[string]interface{}{
			"title": story.Title,
		})
		return err
	}

	logger.Debug("Story created in database", map[string]interface{}{
		"story_id": story.ID,
		"title":    story.Title,
	})
	return nil
}

// CreateBatch inserts stories in a single transaction.
func (r *storyRepository) CreateBatch(stories []model.Story) error {
	if len(stories) == 0 {
		return nil
	}
	logger.Debug("Creating stories in database", map[string]interface{}{
		"count": len(stories),
	})

	if err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(stories, 100).Error
	}); err != nil {
		logger.Error("Failed to create stories in database", err, map[string]interface{}{
			"count": len(stories),
		})
		return err
	}
	return nil
}

func (r *storyRepository) Update(story *model.Story) error {
	logger.Debug("Updating story in database", map[string]interface{}{
		"story_id": story.ID,
		"title":    story.Title,
	})

	if err := r.db.Save(story).Error; err != nil {
		logger.Error("Failed to update story in database", err, map[string]interface{}{
			"story_id": story.ID,
		})
		return err
	}

	logger.Debug("Story updated in database", map[string]interface{}{
		"story_id": story.ID,
	})
	return nil
}

// UpdateListFields writes the columns editable from the admin list view.
// A map is used so that false and 0 are written too.
func (r *storyRepository) UpdateListFields(id uint, isFeatured bool, rating int) error {
	logger.Debug("Updating story list fields in database", map[string]interface{}{
		"story_id":    id,
		"is_featured": isFeatured,
		"rating":      rating,
	})

	result := r.db.Model(&model.Story{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_featured": isFeatured,
		"rating":      rating,
	})
	if result.Error != nil {
		logger.Error("Failed to update story list fields in database", result.Error, map[string]interface{}{
			"story_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateListFieldsBatch applies every update or none of them.
func (r *storyRepository) UpdateListFieldsBatch(updates []StoryListUpdate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &storyRepository{db: tx}
		for _, u := range updates {
			if err := txRepo.UpdateListFields(u.ID, u.IsFeatured, u.Rating); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *storyRepository) Delete(id uint) error {
	logger.Debug("Deleting story from database", map[string]interface{}{
		"story_id": id,
	})

	result := r.db.Delete(&model.Story{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete story from database", result.Error, map[string]interface{}{
			"story_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Story deleted from database", map[string]interface{}{
		"story_id": id,
	})
	return nil
}
