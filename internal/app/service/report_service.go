package service

import (
	"sort"

	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/internal/app/repository"
	"github.com/ikkim/storybook-backend/pkg/logger"
)

// OrphanReport lists stories that reference an age group code or theme name
// no stored record carries. Such stories stay browsable; they just never
// appear under a listed age group or theme.
type OrphanReport struct {
	Stories          []model.Story
	UnknownAgeGroups []string
	UnknownThemes    []string
}

func (r *OrphanReport) Empty() bool {
	return len(r.Stories) == 0
}

type ReportService interface {
	OrphanReport() (*OrphanReport, error)
}

type reportService struct {
	ageGroupRepo repository.AgeGroupRepository
	themeRepo    repository.ThemeRepository
	storyRepo    repository.StoryRepository
}

func NewReportService(
	ageGroupRepo repository.AgeGroupRepository,
	themeRepo repository.ThemeRepository,
	storyRepo repository.StoryRepository,
) ReportService {
	return &reportService{
		ageGroupRepo: ageGroupRepo,
		themeRepo:    themeRepo,
		storyRepo:    storyRepo,
	}
}

func (s *reportService) OrphanReport() (*OrphanReport, error) {
	stories, err := s.storyRepo.FindOrphans()
	if err != nil {
		logger.Error("Failed to find orphaned stories", err)
		return nil, err
	}

	report := &OrphanReport{
		Stories:          stories,
		UnknownAgeGroups: []string{},
		UnknownThemes:    []string{},
	}
	if len(stories) == 0 {
		return report, nil
	}

	ageGroups, err := s.ageGroupRepo.FindAll()
	if err != nil {
		return nil, err
	}
	themes, err := s.themeRepo.FindAll()
	if err != nil {
		return nil, err
	}

	knownRanges := make(map[string]bool, len(ageGroups))
	for _, ag := range ageGroups {
		knownRanges[ag.Range] = true
	}
	knownThemes := make(map[string]bool, len(themes))
	for _, th := range themes {
		knownThemes[th.Name] = true
	}

	missingRanges := make(map[string]bool)
	missingThemes := make(map[string]bool)
	for _, st := range stories {
		if !knownRanges[st.AgeGroup] {
			missingRanges[st.AgeGroup] = true
		}
		if !knownThemes[st.Theme] {
			missingThemes[st.Theme] = true
		}
	}
	report.UnknownAgeGroups = sortedKeys(missingRanges)
	report.UnknownThemes = sortedKeys(missingThemes)

	logger.Info("Orphaned stories found", map[string]interface{}{
		"count":              len(stories),
		"unknown_age_groups": report.UnknownAgeGroups,
		"unknown_themes":     report.UnknownThemes,
	})
	return report, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
