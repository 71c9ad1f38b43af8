package presenter

import (
	"fmt"
	"html/template"
	"net/url"

	"github.com/ikkim/storybook-backend/internal/app/model"
)

const (
	MaxRating = 5

	defaultAgeGroupColor = "#6A0572"
)

// Star is one position of a rating display.
type Star struct {
	Filled bool
}

// StoryCard is a story as listed on the HTML pages.
type StoryCard struct {
	ID            uint
	Title         string
	Summary       string
	Content       string
	ImageURL      string
	AgeGroup      string
	AgeGroupName  string
	AgeGroupColor string
	AgeGroupURL   string
	Theme         string
	ThemeIcon     template.HTML
	ThemeURL      string
	ReadingTime   string
	Stars         []Star
	IsFeatured    bool
	URL           string
}

type AgeGroupLink struct {
	Name  string
	Range string
	Color string
	URL   string
}

type ThemeLink struct {
	Name string
	Icon template.HTML
	URL  string
}

// Index resolves story codes to the AgeGroup and Theme records carrying
// them. The first record (lowest id) wins when codes repeat.
type Index struct {
	ageGroups map[string]model.AgeGroup
	themes    map[string]model.Theme
}

func NewIndex(ageGroups []model.AgeGroup, themes []model.Theme) *Index {
	idx := &Index{
		ageGroups: make(map[string]model.AgeGroup, len(ageGroups)),
		themes:    make(map[string]model.Theme, len(themes)),
	}
	for _, ag := range ageGroups {
		if _, ok := idx.ageGroups[ag.Range]; !ok {
			idx.ageGroups[ag.Range] = ag
		}
	}
	for _, th := range themes {
		if _, ok := idx.themes[th.Name]; !ok {
			idx.themes[th.Name] = th
		}
	}
	return idx
}

func StoryURL(id uint) string {
	return fmt.Sprintf("/story/%d/", id)
}

func AgeGroupURL(code string) string {
	return "/age-group/" + url.PathEscape(code) + "/"
}

func ThemeURL(name string) string {
	return "/theme/" + url.PathEscape(name) + "/"
}

// ReadingTimeLabel renders minutes the way the story cards show them.
func ReadingTimeLabel(minutes int) string {
	return fmt.Sprintf("%d دقائق للقراءة", minutes)
}

// Stars renders rating as MaxRating positions, clamping out-of-range values.
func Stars(rating int) []Star {
	stars := make([]Star, MaxRating)
	for i := range stars {
		stars[i].Filled = i < rating
	}
	return stars
}

// Icon marks theme SVG markup as trusted. Icons are only written through the
// admin surface.
func Icon(svg string) template.HTML {
	return template.HTML(svg)
}

func (idx *Index) Card(s model.Story) StoryCard {
	card := StoryCard{
		ID:            s.ID,
		Title:         s.Title,
		Summary:       s.Summary,
		Content:       s.Content,
		ImageURL:      s.ImageURL,
		AgeGroup:      s.AgeGroup,
		AgeGroupName:  s.AgeGroup,
		AgeGroupColor: defaultAgeGroupColor,
		AgeGroupURL:   AgeGroupURL(s.AgeGroup),
		Theme:         s.Theme,
		ThemeURL:      ThemeURL(s.Theme),
		ReadingTime:   ReadingTimeLabel(s.ReadingTime),
		Stars:         Stars(s.Rating),
		IsFeatured:    s.IsFeatured,
		URL:           StoryURL(s.ID),
	}
	if ag, ok := idx.ageGroups[s.AgeGroup]; ok {
		card.AgeGroupName = ag.Name
		card.AgeGroupColor = ag.Color
	}
	if th, ok := idx.themes[s.Theme]; ok {
		card.ThemeIcon = Icon(th.Icon)
	}
	return card
}

func (idx *Index) Cards(stories []model.Story) []StoryCard {
	cards := make([]StoryCard, 0, len(stories))
	for _, s := range stories {
		cards = append(cards, idx.Card(s))
	}
	return cards
}

func AgeGroupLinks(ageGroups []model.AgeGroup) []AgeGroupLink {
	links := make([]AgeGroupLink, 0, len(ageGroups))
	for _, ag := range ageGroups {
		links = append(links, AgeGroupLink{Name: ag.Name, Range: ag.Range, Color: ag.Color, URL: AgeGroupURL(ag.Range)})
	}
	return links
}

func ThemeLinks(themes []model.Theme) []ThemeLink {
	links := make([]ThemeLink, 0, len(themes))
	for _, th := range themes {
		links = append(links, ThemeLink{Name: th.Name, Icon: Icon(th.Icon), URL: ThemeURL(th.Name)})
	}
	return links
}

// FilterKind tells the filtered listing page what the stories were narrowed by.
type FilterKind string

const (
	FilterAgeGroup FilterKind = "age_group"
	FilterTheme    FilterKind = "theme"
)

type HomeView struct {
	Featured  []StoryCard
	Recent    []StoryCard
	AgeGroups []AgeGroupLink
	Themes    []ThemeLink
}

type StoryView struct {
	Story StoryCard
}

type FilteredView struct {
	FilterType  FilterKind
	FilterValue string
	Heading     string
	Stories     []StoryCard
}

func FilteredHeading(kind FilterKind, value string) string {
	if kind == FilterAgeGroup {
		return "قصص لعمر " + value + " سنوات"
	}
	return "قصص عن " + value
}
