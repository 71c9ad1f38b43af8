// Package presenter turns catalogue models into the shapes clients see:
// JSON bodies for /api and view models for the HTML templates.
package presenter

import (
	"time"

	"github.com/ikkim/storybook-backend/internal/app/model"
)

type AgeGroupJSON struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Range string `json:"range"`
	Color string `json:"color"`
}

type ThemeJSON struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// StoryDetailJSON is the single-story body. It carries no created_at.
type StoryDetailJSON struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	ImageURL    string `json:"image_url"`
	AgeGroup    string `json:"age_group"`
	ReadingTime int    `json:"reading_time"`
	Theme       string `json:"theme"`
	IsFeatured  bool   `json:"is_featured"`
	Rating      int    `json:"rating"`
}

// StoryJSON is a story inside a list body.
type StoryJSON struct {
	StoryDetailJSON
	CreatedAt time.Time `json:"created_at"`
}

func AgeGroup(ag model.AgeGroup) AgeGroupJSON {
	return AgeGroupJSON{ID: ag.ID, Name: ag.Name, Range: ag.Range, Color: ag.Color}
}

// AgeGroups never returns nil so empty lists encode as [].
func AgeGroups(ageGroups []model.AgeGroup) []AgeGroupJSON {
	out := make([]AgeGroupJSON, 0, len(ageGroups))
	for _, ag := range ageGroups {
		out = append(out, AgeGroup(ag))
	}
	return out
}

func Theme(th model.Theme) ThemeJSON {
	return ThemeJSON{ID: th.ID, Name: th.Name, Icon: th.Icon}
}

func Themes(themes []model.Theme) []ThemeJSON {
	out := make([]ThemeJSON, 0, len(themes))
	for _, th := range themes {
		out = append(out, Theme(th))
	}
	return out
}

func StoryDetail(s model.Story) StoryDetailJSON {
	return StoryDetailJSON{
		ID:          s.ID,
		Title:       s.Title,
		Content:     s.Content,
		Summary:     s.Summary,
		ImageURL:    s.ImageURL,
		AgeGroup:    s.AgeGroup,
		ReadingTime: s.ReadingTime,
		Theme:       s.Theme,
		IsFeatured:  s.IsFeatured,
		Rating:      s.Rating,
	}
}

func Story(s model.Story) StoryJSON {
	return StoryJSON{StoryDetailJSON: StoryDetail(s), CreatedAt: s.CreatedAt.UTC()}
}

func Stories(stories []model.Story) []StoryJSON {
	out := make([]StoryJSON, 0, len(stories))
	for _, s := range stories {
		out = append(out, Story(s))
	}
	return out
}
