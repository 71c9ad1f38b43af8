package service

import (
	"errors"

	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/internal/app/repository"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrStoryNotFound    = errors.New("story not found")
	ErrAgeGroupNotFound = errors.New("age group not found")
	ErrThemeNotFound    = errors.New("theme not found")
)

const (
	// NoLimit makes ListRecentStories return every story.
	NoLimit = -1

	// HomeRecentLimit is how many recent stories the home page shows.
	HomeRecentLimit = 4
)

// HomePage is everything the landing page renders.
type HomePage struct {
	FeaturedStories []model.Story
	RecentStories   []model.Story
	AgeGroups       []model.AgeGroup
	Themes          []model.Theme
}

// CatalogService is the read path of the catalogue. It holds no state of its
// own; every call goes to the store.
type CatalogService interface {
	ListAgeGroups() ([]model.AgeGroup, error)
	ListThemes() ([]model.Theme, error)
	ListFeaturedStories() ([]model.Story, error)
	ListRecentStories(limit int) ([]model.Story, error)
	ListStories() ([]model.Story, error)
	GetStoryByID(id uint) (*model.Story, error)
	ListStoriesByAgeGroup(code string) ([]model.Story, error)
	ListStoriesByTheme(name string) ([]model.Story, error)
	FindAgeGroupByRange(code string) (*model.AgeGroup, error)
	FindThemeByName(name string) (*model.Theme, error)
	HomePage() (*HomePage, error)
}

type catalogService struct {
	ageGroupRepo repository.AgeGroupRepository
	themeRepo    repository.ThemeRepository
	storyRepo    repository.StoryRepository
}

func NewCatalogService(
	ageGroupRepo repository.AgeGroupRepository,
	themeRepo repository.ThemeRepository,
	storyRepo repository.StoryRepository,
) CatalogService {
	return &catalogService{
		ageGroupRepo: ageGroupRepo,
		themeRepo:    themeRepo,
		storyRepo:    storyRepo,
	}
}

func (s *catalogService) ListAgeGroups() ([]model.AgeGroup, error) {
	ageGroups, err := s.ageGroupRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list age groups", err)
		return nil, err
	}
	return ageGroups, nil
}

func (s *catalogService) ListThemes() ([]model.Theme, error) {
	themes, err := s.themeRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list themes", err)
		return nil, err
	}
	return themes, nil
}

func (s *catalogService) ListFeaturedStories() ([]model.Story, error) {
	stories, err := s.storyRepo.FindFeatured()
	if err != nil {
		logger.Error("Failed to list featured stories", err)
		return nil, err
	}

	logger.Info("Featured stories listed", map[string]interface{}{
		"count": len(stories),
	})
	return stories, nil
}

func (s *catalogService) ListRecentStories(limit int) ([]model.Story, error) {
	if limit < 0 {
		limit = NoLimit
	}

	stories, err := s.storyRepo.FindRecent(limit)
	if err != nil {
		logger.Error("Failed to list recent stories", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, err
	}

	logger.Info("Recent stories listed", map[string]interface{}{
		"limit": limit,
		"count": len(stories),
	})
	return stories, nil
}

func (s *catalogService) ListStories() ([]model.Story, error) {
	stories, err := s.storyRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list stories", err)
		return nil, err
	}

	logger.Info("Stories listed", map[string]interface{}{
		"count": len(stories),
	})
	return stories, nil
}

func (s *catalogService) GetStoryByID(id uint) (*model.Story, error) {
	logger.Debug("Fetching story by ID", map[string]interface{}{
		"story_id": id,
	})

	story, err := s.storyRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Story not found", map[string]interface{}{
				"story_id": id,
			})
			return nil, ErrStoryNotFound
		}
		logger.Error("Failed to fetch story", err, map[string]interface{}{
			"story_id": id,
		})
		return nil, err
	}
	return story, nil
}

func (s *catalogService) ListStoriesByAgeGroup(code string) ([]model.Story, error) {
	stories, err := s.storyRepo.FindByAgeGroup(code)
	if err != nil {
		logger.Error("Failed to list stories by age group", err, map[string]interface{}{
			"age_group": code,
		})
		return nil, err
	}

	logger.Info("Stories listed by age group", map[string]interface{}{
		"age_group": code,
		"count":     len(stories),
	})
	return stories, nil
}

func (s *catalogService) ListStoriesByTheme(name string) ([]model.Story, error) {
	stories, err := s.storyRepo.FindByTheme(name)
	if err != nil {
		logger.Error("Failed to list stories by theme", err, map[string]interface{}{
			"theme": name,
		})
		return nil, err
	}

	logger.Info("Stories listed by theme", map[string]interface{}{
		"theme": name,
		"count": len(stories),
	})
	return stories, nil
}

// FindAgeGroupByRange resolves a story's age group code for display.
func (s *catalogService) FindAgeGroupByRange(code string) (*model.AgeGroup, error) {
	ageGroup, err := s.ageGroupRepo.FindByRange(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgeGroupNotFound
		}
		return nil, err
	}
	return ageGroup, nil
}

// FindThemeByName resolves a story's theme name for display.
func (s *catalogService) FindThemeByName(name string) (*model.Theme, error) {
	theme, err := s.themeRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThemeNotFound
		}
		return nil, err
	}
	return theme, nil
}

func (s *catalogService) HomePage() (*HomePage, error) {
	featured, err := s.ListFeaturedStories()
	if err != nil {
		return nil, err
	}
	recent, err := s.ListRecentStories(HomeRecentLimit)
	if err != nil {
		return nil, err
	}
	ageGroups, err := s.ListAgeGroups()
	if err != nil {
		return nil, err
	}
	themes, err := s.ListThemes()
	if err != nil {
		return nil, err
	}

	return &HomePage{
		FeaturedStories: featured,
		RecentStories:   recent,
		AgeGroups:       ageGroups,
		Themes:          themes,
	}, nil
}
