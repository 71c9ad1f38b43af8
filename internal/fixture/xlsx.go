package fixture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// StoryColumns is the header row expected by ReadStoriesXLSX. Column order
// in the sheet does not matter; headers are matched case-insensitively.
var StoryColumns = []string{
	"title", "summary", "content", "image_url", "age_group",
	"reading_time", "theme", "is_featured", "rating",
}

// ImportReport summarizes rows that could not be turned into stories.
type ImportReport struct {
	Rows    int
	Skipped []SkippedRow
}

type SkippedRow struct {
	Row    int // 1-based sheet row
	Reason string
}

// ReadStoriesXLSX reads stories from the first sheet of a workbook.
func ReadStoriesXLSX(path string) ([]model.Story, *ImportReport, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, nil, err
	}

	report := &ImportReport{}
	var stories []model.Story
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}
		report.Rows++

		story, reason := storyFromRow(row, index)
		if reason != "" {
			report.Skipped = append(report.Skipped, SkippedRow{Row: rowNum, Reason: reason})
			continue
		}
		stories = append(stories, story)
	}
	return stories, report, nil
}

// WriteStoriesXLSX writes stories in the layout ReadStoriesXLSX expects.
func WriteStoriesXLSX(path string, stories []model.Story) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(StoryColumns))
	for i, c := range StoryColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, s := range stories {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			s.Title, s.Summary, s.Content, s.ImageURL, s.AgeGroup,
			s.ReadingTime, s.Theme, s.IsFeatured, s.Rating,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"title", "age_group", "theme"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return index, nil
}

func storyFromRow(row []string, index map[string]int) (model.Story, string) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	story := model.Story{
		Title:    get("title"),
		Summary:  get("summary"),
		Content:  get("content"),
		ImageURL: get("image_url"),
		AgeGroup: get("age_group"),
		Theme:    get("theme"),
	}
	if story.Title == "" {
		return story, "missing title"
	}
	if len([]rune(story.Title)) > model.StoryTitleMaxLength {
		return story, "title too long"
	}
	if story.AgeGroup == "" || story.Theme == "" {
		return story, "missing age_group or theme"
	}

	var err error
	if story.ReadingTime, err = parseIntCell(get("reading_time")); err != nil {
		return story, "invalid reading_time"
	}
	if story.Rating, err = parseIntCell(get("rating")); err != nil {
		return story, "invalid rating"
	}
	story.IsFeatured = parseBoolCell(get("is_featured"))
	return story, ""
}

func parseIntCell(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseBoolCell(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
