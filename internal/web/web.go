// Package web holds the HTML templates of the public pages and the admin
// surface, embedded into the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"sort"
	"strings"

	"github.com/ikkim/storybook-backend/internal/app/admin"
	"github.com/ikkim/storybook-backend/internal/app/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	HomePage            = "home.html"
	StoryDetailPage     = "story_detail.html"
	FilteredStoriesPage = "filtered_stories.html"
	NotFoundPage        = "404.html"
	ServerErrorPage     = "500.html"

	AdminLoginPage         = "admin_login.html"
	AdminDashboardPage     = "admin_dashboard.html"
	AdminListPage          = "admin_list.html"
	AdminFormPage          = "admin_form.html"
	AdminDeleteConfirmPage = "admin_delete_confirm.html"
)

// Templates parses every embedded template. Callers hand the result to
// gin's SetHTMLTemplate.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"paragraphs": Paragraphs,
		"display":    Display,
		"truthy":     Truthy,
		"editName":   EditName,
		"fieldKind":  FieldKind,
		"filterURL":  FilterURL,
	}
}

// Paragraphs splits story text on line breaks, dropping blank lines.
func Paragraphs(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Display renders a record value in an admin list cell.
func Display(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case string:
		if val == "" {
			return "-"
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

// Truthy reads checkbox state from a record value or a submitted form value.
func Truthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(val) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}

// EditName is the form field name of one list-editable cell, "<id>.<field>".
func EditName(id uint, field string) string {
	return fmt.Sprintf("%d.%s", id, field)
}

func FieldKind(entity admin.Entity, name string) string {
	f, ok := entity.Field(name)
	if !ok {
		return ""
	}
	return string(f.Kind)
}

// FilterURL is the list query string with one filter set to value, or
// removed when value is empty. Search and the other filters are kept.
func FilterURL(q service.ListQuery, field, value string) string {
	params := url.Values{}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k != field && q.Filters[k] != "" {
			params.Set(k, q.Filters[k])
		}
	}
	if value != "" {
		params.Set(field, value)
	}
	if len(params) == 0 {
		return "?"
	}
	return "?" + params.Encode()
}
