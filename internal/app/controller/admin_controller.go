package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storybook-backend/internal/app/admin"
	"github.com/ikkim/storybook-backend/internal/app/service"
	apperrors "github.com/ikkim/storybook-backend/internal/errors"
	"github.com/ikkim/storybook-backend/internal/metrics"
	"github.com/ikkim/storybook-backend/internal/middleware"
	"github.com/ikkim/storybook-backend/internal/web"
)

const invalidLoginMessage = "Please enter the correct username and password for a staff account. Note that both fields may be case-sensitive."

// AdminPage is the part of every admin view the shared header reads.
type AdminPage struct {
	Title    string
	Username string
}

type LoginView struct {
	AdminPage
	Next  string
	Login string
	Error string
}

type DashboardView struct {
	AdminPage
	Dashboard *service.Dashboard
}

type ListView struct {
	AdminPage
	List   *service.RecordList
	Errors map[string]string
	Saved  int
}

type FormView struct {
	AdminPage
	Entity admin.Entity
	Record *service.Record
	Values map[string]string
	Errors map[string]string
	Error  string
	Upload bool
}

type DeleteView struct {
	AdminPage
	Entity admin.Entity
	Record *service.Record
	Note   string
}

// AdminController serves the administrative surface: login, dashboard and
// the list, add, change and delete pages of every registered entity.
type AdminController struct {
	admin         service.AdminService
	auth          service.AdminAuthService
	uploadEnabled bool
}

func NewAdminController(adminService service.AdminService, authService service.AdminAuthService, uploadEnabled bool) *AdminController {
	return &AdminController{
		admin:         adminService,
		auth:          authService,
		uploadEnabled: uploadEnabled,
	}
}

func (ctrl *AdminController) page(c *gin.Context, title string) AdminPage {
	username, _ := middleware.GetAdminUsername(c)
	return AdminPage{Title: title, Username: username}
}

// LoginPage renders the login form, or skips it for a live session
// GET /admin/login/
func (ctrl *AdminController) LoginPage(c *gin.Context) {
	next := middleware.SafeNext(c.Query("next"))
	if token, ok := middleware.SessionToken(c); ok {
		if _, err := ctrl.auth.Authenticate(c.Request.Context(), token); err == nil {
			c.Redirect(http.StatusFound, next)
			return
		}
	}

	c.HTML(http.StatusOK, web.AdminLoginPage, LoginView{
		AdminPage: AdminPage{Title: "Log in"},
		Next:      next,
	})
}

// Login checks credentials and starts a session
// POST /admin/login/
func (ctrl *AdminController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	username := strings.TrimSpace(c.PostForm("username"))
	next := middleware.SafeNext(c.PostForm("next"))

	session, err := ctrl.auth.Login(username, c.PostForm("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.AdminLoginsTotal.WithLabelValues("failure").Inc()
			c.HTML(http.StatusOK, web.AdminLoginPage, LoginView{
				AdminPage: AdminPage{Title: "Log in"},
				Next:      next,
				Login:     username,
				Error:     invalidLoginMessage,
			})
			return
		}
		log.Error("Admin login failed", err, map[string]interface{}{
			"username": username,
		})
		metrics.AdminLoginsTotal.WithLabelValues("error").Inc()
		RenderServerError(c)
		return
	}

	metrics.AdminLoginsTotal.WithLabelValues("success").Inc()
	setSessionCookie(c, session.Token, int(session.Claims.RemainingLifetime().Seconds()))
	c.Redirect(http.StatusFound, next)
}

// Logout ends the session
// POST /admin/logout/
func (ctrl *AdminController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if token, ok := middleware.SessionToken(c); ok {
		if err := ctrl.auth.Logout(c.Request.Context(), token); err != nil {
			log.Warn("Failed to revoke admin session", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, middleware.AdminLoginPath)
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

// Dashboard lists the entities with their counts and the orphan report
// GET /admin/
func (ctrl *AdminController) Dashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	dashboard, err := ctrl.admin.Dashboard()
	if err != nil {
		log.Error("Failed to load admin dashboard", err, nil)
		RenderServerError(c)
		return
	}

	c.HTML(http.StatusOK, web.AdminDashboardPage, DashboardView{
		AdminPage: ctrl.page(c, "Site administration"),
		Dashboard: dashboard,
	})
}

func listQuery(c *gin.Context, entity admin.Entity) service.ListQuery {
	q := service.ListQuery{
		Search:  strings.TrimSpace(c.Query("q")),
		Filters: map[string]string{},
	}
	for _, name := range entity.ListFilter {
		if v := c.Query(name); v != "" {
			q.Filters[name] = v
		}
	}
	return q
}

// List renders the change list with search and filters
// GET /admin/:entity/
func (ctrl *AdminController) List(c *gin.Context) {
	entity, ok := admin.Lookup(c.Param("entity"))
	if !ok {
		RenderNotFound(c)
		return
	}
	saved, _ := strconv.Atoi(c.Query("saved"))
	ctrl.renderList(c, entity, nil, saved)
}

func (ctrl *AdminController) renderList(c *gin.Context, entity admin.Entity, fieldErrors map[string]string, saved int) {
	log := middleware.GetLoggerFromContext(c)

	list, err := ctrl.admin.List(entity.Slug, listQuery(c, entity))
	if err != nil {
		log.Error("Failed to list admin records", err, map[string]interface{}{
			"entity": entity.Slug,
		})
		RenderServerError(c)
		return
	}

	c.HTML(http.StatusOK, web.AdminListPage, ListView{
		AdminPage: ctrl.page(c, "Select "+strings.ToLower(entity.Name)+" to change"),
		List:      list,
		Errors:    fieldErrors,
		Saved:     saved,
	})
}

// SaveList applies the inline edits of a change list. Rows arrive as "ids"
// plus one "<id>.<field>" value per editable column; an unchecked box sends
// nothing and means false.
// POST /admin/:entity/
func (ctrl *AdminController) SaveList(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	entity, ok := admin.Lookup(c.Param("entity"))
	if !ok {
		RenderNotFound(c)
		return
	}
	if len(entity.ListEditable) == 0 {
		c.Status(http.StatusMethodNotAllowed)
		return
	}

	var edits []service.ListEdit
	for _, raw := range c.PostFormArray("ids") {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid row id.")
			return
		}
		edit := service.ListEdit{ID: uint(id), Values: map[string]string{}}
		for _, name := range entity.ListEditable {
			edit.Values[name] = c.PostForm(web.EditName(edit.ID, name))
		}
		edits = append(edits, edit)
	}

	n, err := ctrl.admin.UpdateListEditable(entity.Slug, edits)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			ctrl.renderList(c, entity, verr.Fields, 0)
		case isNotFound(err):
			RenderNotFound(c)
		default:
			log.Error("Failed to save list edits", err, map[string]interface{}{
				"entity": entity.Slug,
			})
			RenderServerError(c)
		}
		return
	}

	metrics.AdminWritesTotal.WithLabelValues(entity.Slug, "list_edit").Add(float64(n))

	u := *c.Request.URL
	q := u.Query()
	q.Set("saved", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	c.Redirect(http.StatusSeeOther, u.RequestURI())
}

// AddPage renders an empty form
// GET /admin/:entity/add/
func (ctrl *AdminController) AddPage(c *gin.Context) {
	entity, ok := admin.Lookup(c.Param("entity"))
	if !ok {
		RenderNotFound(c)
		return
	}
	ctrl.renderForm(c, http.StatusOK, entity, nil, map[string]string{}, nil, "")
}

// Create saves a new record
// POST /admin/:entity/add/
func (ctrl *AdminController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	entity, ok := admin.Lookup(c.Param("entity"))
	if !ok {
		RenderNotFound(c)
		return
	}

	form := postedForm(c, entity)
	record, err := ctrl.admin.Create(entity.Slug, form)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			ctrl.renderForm(c, http.StatusOK, entity, nil, form, verr.Fields, "")
			return
		}
		log.Error("Failed to create admin record", err, map[string]interface{}{
			"entity": entity.Slug,
		})
		info := apperrors.ParseError(err, strings.ToLower(entity.Name))
		ctrl.renderForm(c, http.StatusOK, entity, nil, form, nil, info.Message)
		return
	}

	metrics.AdminWritesTotal.WithLabelValues(entity.Slug, "create").Inc()
	log.Info("Admin record added", map[string]interface{}{
		"entity": entity.Slug,
		"id":     record.ID,
	})
	c.Redirect(http.StatusSeeOther, entityURL(entity))
}

// ChangePage renders the form of an existing record
// GET /admin/:entity/:id/change/
func (ctrl *AdminController) ChangePage(c *gin.Context) {
	entity, record, ok := ctrl.loadRecord(c)
	if !ok {
		return
	}
	ctrl.renderForm(c, http.StatusOK, entity, record, recordForm(entity, record), nil, "")
}

// Update saves changes to an existing record
// POST /admin/:entity/:id/change/
func (ctrl *AdminController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	entity, record, ok := ctrl.loadRecord(c)
	if !ok {
		return
	}

	form := postedForm(c, entity)
	updated, err := ctrl.admin.Update(entity.Slug, record.ID, form)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			ctrl.renderForm(c, http.StatusOK, entity, record, form, verr.Fields, "")
		case isNotFound(err):
			RenderNotFound(c)
		default:
			log.Error("Failed to update admin record", err, map[string]interface{}{
				"entity": entity.Slug,
				"id":     record.ID,
			})
			info := apperrors.ParseError(err, strings.ToLower(entity.Name))
			ctrl.renderForm(c, http.StatusOK, entity, record, form, nil, info.Message)
		}
		return
	}

	metrics.AdminWritesTotal.WithLabelValues(entity.Slug, "update").Inc()
	log.Info("Admin record changed", map[string]interface{}{
		"entity": entity.Slug,
		"id":     updated.ID,
	})
	c.Redirect(http.StatusSeeOther, entityURL(entity))
}

// DeletePage asks for confirmation
// GET /admin/:entity/:id/delete/
func (ctrl *AdminController) DeletePage(c *gin.Context) {
	entity, record, ok := ctrl.loadRecord(c)
	if !ok {
		return
	}

	view := DeleteView{
		AdminPage: ctrl.page(c, "Are you sure?"),
		Entity:    entity,
		Record:    record,
	}
	if entity.Slug != admin.StorySlug {
		view.Note = "Stories that use this " + strings.ToLower(entity.Name) + " keep their value and stop being listed under it."
	}
	c.HTML(http.StatusOK, web.AdminDeleteConfirmPage, view)
}

// Delete removes the record
// POST /admin/:entity/:id/delete/
func (ctrl *AdminController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	entity, record, ok := ctrl.loadRecord(c)
	if !ok {
		return
	}

	if _, err := ctrl.admin.Delete(entity.Slug, record.ID); err != nil {
		if isNotFound(err) {
			RenderNotFound(c)
			return
		}
		log.Error("Failed to delete admin record", err, map[string]interface{}{
			"entity": entity.Slug,
			"id":     record.ID,
		})
		RenderServerError(c)
		return
	}

	metrics.AdminWritesTotal.WithLabelValues(entity.Slug, "delete").Inc()
	c.Redirect(http.StatusSeeOther, entityURL(entity))
}

// loadRecord resolves :entity and :id, rendering 404 itself when either is unknown.
func (ctrl *AdminController) loadRecord(c *gin.Context) (admin.Entity, *service.Record, bool) {
	log := middleware.GetLoggerFromContext(c)

	entity, ok := admin.Lookup(c.Param("entity"))
	if !ok {
		RenderNotFound(c)
		return admin.Entity{}, nil, false
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		RenderNotFound(c)
		return admin.Entity{}, nil, false
	}

	record, err := ctrl.admin.Get(entity.Slug, id)
	if err != nil {
		if isNotFound(err) {
			RenderNotFound(c)
		} else {
			log.Error("Failed to load admin record", err, map[string]interface{}{
				"entity": entity.Slug,
				"id":     id,
			})
			RenderServerError(c)
		}
		return admin.Entity{}, nil, false
	}
	return entity, record, true
}

func (ctrl *AdminController) renderForm(
	c *gin.Context,
	status int,
	entity admin.Entity,
	record *service.Record,
	values map[string]string,
	fieldErrors map[string]string,
	message string,
) {
	title := "Add " + strings.ToLower(entity.Name)
	if record != nil {
		title = "Change " + strings.ToLower(entity.Name)
	}
	c.HTML(status, web.AdminFormPage, FormView{
		AdminPage: ctrl.page(c, title),
		Entity:    entity,
		Record:    record,
		Values:    values,
		Errors:    fieldErrors,
		Error:     message,
		Upload:    ctrl.uploadEnabled,
	})
}

func postedForm(c *gin.Context, entity admin.Entity) map[string]string {
	form := make(map[string]string, len(entity.Fields))
	for _, f := range entity.Fields {
		form[f.Name] = c.PostForm(f.Name)
	}
	return form
}

func recordForm(entity admin.Entity, record *service.Record) map[string]string {
	form := make(map[string]string, len(entity.Fields))
	for _, f := range entity.Fields {
		if v, ok := record.Values[f.Name]; ok {
			form[f.Name] = fmt.Sprint(v)
		}
	}
	return form
}

func entityURL(entity admin.Entity) string {
	return "/admin/" + entity.Slug + "/"
}

func isNotFound(err error) bool {
	return errors.Is(err, service.ErrStoryNotFound) ||
		errors.Is(err, service.ErrAgeGroupNotFound) ||
		errors.Is(err, service.ErrThemeNotFound) ||
		errors.Is(err, service.ErrUnknownEntity)
}
