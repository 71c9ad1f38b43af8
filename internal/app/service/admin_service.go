package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/storybook-backend/internal/app/admin"
	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/internal/app/repository"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrUnknownEntity = errors.New("unknown admin entity")

// Record is an entity row as the admin pages see it.
type Record struct {
	ID     uint
	Label  string
	Values map[string]interface{}
}

// ListQuery carries the search box and the selected list filters.
type ListQuery struct {
	Search  string
	Filters map[string]string
}

type FilterChoice struct {
	Value string
	Label string
}

type FilterOptions struct {
	Field    string
	Label    string
	Choices  []FilterChoice
	Selected string
}

type RecordList struct {
	Entity  admin.Entity
	Records []Record
	Total   int64
	Filters []FilterOptions
	Query   ListQuery
}

// ListEdit is one row submitted from a list page with editable columns.
type ListEdit struct {
	ID     uint
	Values map[string]string
}

type EntitySummary struct {
	Entity admin.Entity
	Count  int64
}

type Dashboard struct {
	Entities []EntitySummary
	Orphans  *OrphanReport
}

type AdminService interface {
	Dashboard() (*Dashboard, error)
	List(slug string, query ListQuery) (*RecordList, error)
	Get(slug string, id uint) (*Record, error)
	Create(slug string, form map[string]string) (*Record, error)
	Update(slug string, id uint, form map[string]string) (*Record, error)
	Delete(slug string, id uint) (*Record, error)
	UpdateListEditable(slug string, edits []ListEdit) (int, error)
}

type adminService struct {
	ageGroupRepo repository.AgeGroupRepository
	themeRepo    repository.ThemeRepository
	storyRepo    repository.StoryRepository
	reports      ReportService
}

func NewAdminService(
	ageGroupRepo repository.AgeGroupRepository,
	themeRepo repository.ThemeRepository,
	storyRepo repository.StoryRepository,
	reports ReportService,
) AdminService {
	return &adminService{
		ageGroupRepo: ageGroupRepo,
		themeRepo:    themeRepo,
		storyRepo:    storyRepo,
		reports:      reports,
	}
}

func lookupEntity(slug string) (admin.Entity, error) {
	entity, ok := admin.Lookup(slug)
	if !ok {
		return admin.Entity{}, ErrUnknownEntity
	}
	return entity, nil
}

func notFoundErr(slug string) error {
	switch slug {
	case admin.AgeGroupSlug:
		return ErrAgeGroupNotFound
	case admin.ThemeSlug:
		return ErrThemeNotFound
	default:
		return ErrStoryNotFound
	}
}

func (s *adminService) Dashboard() (*Dashboard, error) {
	dashboard := &Dashboard{}
	for _, entity := range admin.Entities() {
		var (
			count int64
			err   error
		)
		switch entity.Slug {
		case admin.AgeGroupSlug:
			count, err = s.ageGroupRepo.Count()
		case admin.ThemeSlug:
			count, err = s.themeRepo.Count()
		case admin.StorySlug:
			count, err = s.storyRepo.Count()
		}
		if err != nil {
			logger.Error("Failed to count admin entity", err, map[string]interface{}{
				"entity": entity.Slug,
			})
			return nil, err
		}
		dashboard.Entities = append(dashboard.Entities, EntitySummary{Entity: entity, Count: count})
	}

	orphans, err := s.reports.OrphanReport()
	if err != nil {
		return nil, err
	}
	dashboard.Orphans = orphans
	return dashboard, nil
}

func (s *adminService) List(slug string, query ListQuery) (*RecordList, error) {
	entity, err := lookupEntity(slug)
	if err != nil {
		return nil, err
	}

	logger.Debug("Listing admin records", map[string]interface{}{
		"entity":  slug,
		"search":  query.Search,
		"filters": query.Filters,
	})

	list := &RecordList{Entity: entity, Query: query, Records: []Record{}}
	switch slug {
	case admin.AgeGroupSlug:
		rows, err := s.ageGroupRepo.Search(query.Search, entity.SearchFields)
		if err != nil {
			return nil, err
		}
		for _, ag := range rows {
			list.Records = append(list.Records, ageGroupRecord(ag))
		}
		list.Total, err = s.ageGroupRepo.Count()
		if err != nil {
			return nil, err
		}
	case admin.ThemeSlug:
		rows, err := s.themeRepo.Search(query.Search, entity.SearchFields)
		if err != nil {
			return nil, err
		}
		for _, th := range rows {
			list.Records = append(list.Records, themeRecord(th))
		}
		list.Total, err = s.themeRepo.Count()
		if err != nil {
			return nil, err
		}
	case admin.StorySlug:
		filter := storyFilter(entity, query)
		rows, err := s.storyRepo.FindWithFilter(filter)
		if err != nil {
			return nil, err
		}
		for _, st := range rows {
			list.Records = append(list.Records, storyRecord(st))
		}
		list.Total, err = s.storyRepo.Count()
		if err != nil {
			return nil, err
		}
		list.Filters, err = s.storyFilterOptions(entity, query)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("Admin records listed", map[string]interface{}{
		"entity": slug,
		"count":  len(list.Records),
		"total":  list.Total,
	})
	return list, nil
}

func storyFilter(entity admin.Entity, query ListQuery) repository.StoryFilter {
	filter := repository.StoryFilter{
		Search:       query.Search,
		SearchFields: entity.SearchFields,
	}
	for name, value := range query.Filters {
		if !entity.IsFilter(name) || value == "" {
			continue
		}
		v := value
		switch name {
		case "age_group":
			filter.AgeGroup = &v
		case "theme":
			filter.Theme = &v
		case "is_featured":
			featured := parseBool(v)
			filter.IsFeatured = &featured
		}
	}
	return filter
}

func (s *adminService) storyFilterOptions(entity admin.Entity, query ListQuery) ([]FilterOptions, error) {
	options := make([]FilterOptions, 0, len(entity.ListFilter))
	for _, name := range entity.ListFilter {
		opt := FilterOptions{Field: name, Label: entity.Label(name), Selected: query.Filters[name]}
		if f, _ := entity.Field(name); f.Kind == admin.KindBool {
			opt.Choices = []FilterChoice{{Value: "1", Label: "Yes"}, {Value: "0", Label: "No"}}
		} else {
			values, err := s.storyRepo.DistinctValues(name)
			if err != nil {
				return nil, err
			}
			for _, v := range values {
				opt.Choices = append(opt.Choices, FilterChoice{Value: v, Label: v})
			}
		}
		options = append(options, opt)
	}
	return options, nil
}

func (s *adminService) Get(slug string, id uint) (*Record, error) {
	if _, err := lookupEntity(slug); err != nil {
		return nil, err
	}

	var (
		record Record
		err    error
	)
	switch slug {
	case admin.AgeGroupSlug:
		var ag *model.AgeGroup
		if ag, err = s.ageGroupRepo.FindByID(id); err == nil {
			record = ageGroupRecord(*ag)
		}
	case admin.ThemeSlug:
		var th *model.Theme
		if th, err = s.themeRepo.FindByID(id); err == nil {
			record = themeRecord(*th)
		}
	case admin.StorySlug:
		var st *model.Story
		if st, err = s.storyRepo.FindByID(id); err == nil {
			record = storyRecord(*st)
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr(slug)
		}
		return nil, err
	}
	return &record, nil
}

func (s *adminService) Create(slug string, form map[string]string) (*Record, error) {
	entity, err := lookupEntity(slug)
	if err != nil {
		return nil, err
	}
	values, verr := CleanForm(entity, form)
	if verr != nil {
		return nil, verr
	}

	var record Record
	switch slug {
	case admin.AgeGroupSlug:
		ag := &model.AgeGroup{}
		applyAgeGroup(ag, values)
		if err := s.ageGroupRepo.Create(ag); err != nil {
			return nil, err
		}
		record = ageGroupRecord(*ag)
	case admin.ThemeSlug:
		th := &model.Theme{}
		applyTheme(th, values)
		if err := s.themeRepo.Create(th); err != nil {
			return nil, err
		}
		record = themeRecord(*th)
	case admin.StorySlug:
		st := &model.Story{}
		applyStory(st, values)
		if err := s.storyRepo.Create(st); err != nil {
			return nil, err
		}
		record = storyRecord(*st)
	}

	logger.Info("Admin record created", map[string]interface{}{
		"entity": slug,
		"id":     record.ID,
		"label":  record.Label,
	})
	return &record, nil
}

func (s *adminService) Update(slug string, id uint, form map[string]string) (*Record, error) {
	entity, err := lookupEntity(slug)
	if err != nil {
		return nil, err
	}
	values, verr := CleanForm(entity, form)
	if verr != nil {
		return nil, verr
	}

	var record Record
	switch slug {
	case admin.AgeGroupSlug:
		var ag *model.AgeGroup
		if ag, err = s.ageGroupRepo.FindByID(id); err == nil {
			applyAgeGroup(ag, values)
			if err = s.ageGroupRepo.Update(ag); err == nil {
				record = ageGroupRecord(*ag)
			}
		}
	case admin.ThemeSlug:
		var th *model.Theme
		if th, err = s.themeRepo.FindByID(id); err == nil {
			applyTheme(th, values)
			if err = s.themeRepo.Update(th); err == nil {
				record = themeRecord(*th)
			}
		}
	case admin.StorySlug:
		var st *model.Story
		if st, err = s.storyRepo.FindByID(id); err == nil {
			applyStory(st, values)
			if err = s.storyRepo.Update(st); err == nil {
				record = storyRecord(*st)
			}
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr(slug)
		}
		return nil, err
	}

	logger.Info("Admin record updated", map[string]interface{}{
		"entity": slug,
		"id":     record.ID,
	})
	return &record, nil
}

// Delete removes a record and returns what it was. Deleting an AgeGroup or
// Theme leaves stories carrying its code untouched.
func (s *adminService) Delete(slug string, id uint) (*Record, error) {
	record, err := s.Get(slug, id)
	if err != nil {
		return nil, err
	}

	switch slug {
	case admin.AgeGroupSlug:
		err = s.ageGroupRepo.Delete(id)
	case admin.ThemeSlug:
		err = s.themeRepo.Delete(id)
	case admin.StorySlug:
		err = s.storyRepo.Delete(id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr(slug)
		}
		return nil, err
	}

	logger.Info("Admin record deleted", map[string]interface{}{
		"entity": slug,
		"id":     id,
		"label":  record.Label,
	})
	return record, nil
}

// UpdateListEditable validates every submitted row before writing any.
func (s *adminService) UpdateListEditable(slug string, edits []ListEdit) (int, error) {
	entity, err := lookupEntity(slug)
	if err != nil {
		return 0, err
	}
	if len(entity.ListEditable) == 0 {
		return 0, fmt.Errorf("%s has no editable list columns", entity.PluralName)
	}
	if len(edits) == 0 {
		return 0, nil
	}

	verr := &ValidationError{}
	updates := make([]repository.StoryListUpdate, 0, len(edits))
	for _, edit := range edits {
		u := repository.StoryListUpdate{ID: edit.ID}
		for _, name := range entity.ListEditable {
			field, _ := entity.Field(name)
			v, msg := cleanField(field, edit.Values[name])
			if msg != "" {
				verr.Add(fmt.Sprintf("%d.%s", edit.ID, name), msg)
				continue
			}
			switch name {
			case "is_featured":
				u.IsFeatured = v.(bool)
			case "rating":
				u.Rating = v.(int)
			}
		}
		updates = append(updates, u)
	}
	if verr.HasErrors() {
		return 0, verr
	}

	if err := s.storyRepo.UpdateListFieldsBatch(updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrStoryNotFound
		}
		return 0, err
	}

	logger.Info("Admin list rows updated", map[string]interface{}{
		"entity": slug,
		"count":  len(updates),
	})
	return len(updates), nil
}

// CleanForm checks submitted values against the entity's fields and converts
// them to typed values.
func CleanForm(entity admin.Entity, form map[string]string) (map[string]interface{}, *ValidationError) {
	values := make(map[string]interface{}, len(entity.Fields))
	verr := &ValidationError{}
	for _, field := range entity.Fields {
		v, msg := cleanField(field, form[field.Name])
		if msg != "" {
			verr.Add(field.Name, msg)
			continue
		}
		values[field.Name] = v
	}
	if verr.HasErrors() {
		return nil, verr
	}
	return values, nil
}

func cleanField(field admin.Field, raw string) (interface{}, string) {
	if field.Kind == admin.KindBool {
		return parseBool(raw), ""
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		if field.Required {
			return nil, "This field is required."
		}
		if field.Kind == admin.KindInt {
			return 0, ""
		}
		return "", ""
	}

	switch field.Kind {
	case admin.KindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, "Enter a whole number."
		}
		return n, ""
	default:
		if field.MaxLength > 0 {
			if n := len([]rune(value)); n > field.MaxLength {
				return nil, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", field.MaxLength, n)
			}
		}
		return value, ""
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyAgeGroup(ag *model.AgeGroup, v map[string]interface{}) {
	ag.Name = v["name"].(string)
	ag.Range = v["range"].(string)
	ag.Color = v["color"].(string)
}

func applyTheme(th *model.Theme, v map[string]interface{}) {
	th.Name = v["name"].(string)
	th.Icon = v["icon"].(string)
}

func applyStory(st *model.Story, v map[string]interface{}) {
	st.Title = v["title"].(string)
	st.Summary = v["summary"].(string)
	st.Content = v["content"].(string)
	st.ImageURL = v["image_url"].(string)
	st.AgeGroup = v["age_group"].(string)
	st.ReadingTime = v["reading_time"].(int)
	st.Theme = v["theme"].(string)
	st.IsFeatured = v["is_featured"].(bool)
	st.Rating = v["rating"].(int)
}

func ageGroupRecord(ag model.AgeGroup) Record {
	return Record{
		ID:    ag.ID,
		Label: ag.String(),
		Values: map[string]interface{}{
			"name":  ag.Name,
			"range": ag.Range,
			"color": ag.Color,
		},
	}
}

func themeRecord(th model.Theme) Record {
	return Record{
		ID:    th.ID,
		Label: th.String(),
		Values: map[string]interface{}{
			"name": th.Name,
			"icon": th.Icon,
		},
	}
}

func storyRecord(st model.Story) Record {
	return Record{
		ID:    st.ID,
		Label: st.String(),
		Values: map[string]interface{}{
			"title":        st.Title,
			"summary":      st.Summary,
			"content":      st.Content,
			"image_url":    st.ImageURL,
			"age_group":    st.AgeGroup,
			"reading_time": st.ReadingTime,
			"theme":        st.Theme,
			"is_featured":  st.IsFeatured,
			"rating":       st.Rating,
			"created_at":   st.CreatedAt.Format(time.RFC3339),
		},
	}
}
