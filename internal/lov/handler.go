package lov

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fleetops/fleet-console/internal/platform/httpx"
	"github.com/fleetops/fleet-console/internal/rbac"
	"github.com/fleetops/fleet-console/internal/shared"
	"github.com/fleetops/fleet-console/internal/view"
)

// BasePath is where the list of values screens are mounted.
const BasePath = "/masters/list-of-values"

// Form actions posted to /form.
const (
	ActionSave      = "save"
	ActionAddRow    = "add_row"
	ActionRemoveRow = "remove_row"
)

const (
	templateList = "pages/lov/list.html"
	templateForm = "pages/lov/form.html"
	pageTitle    = "List of Values"
)

// Handler serves the list view and the master form.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac}
}

type listResponse struct {
	Items      []ListRecord `json:"items"`
	TotalCount int          `json:"totalCount"`
	TotalPages int          `json:"totalPages"`
	Page       int          `json:"page"`
	Search     string       `json:"search,omitempty"`
	Status     Status       `json:"status,omitempty"`
	Failed     bool         `json:"failed,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	filter := FilterSpec{
		Search: strings.TrimSpace(q.Get("search")),
		Status: ParseStatus(q.Get("status")),
	}

	result := h.service.Browse(r.Context(), shared.UserFromContext(r.Context()), filter, page)

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, listResponse{
			Items:      result.PageItems,
			TotalCount: result.TotalCount,
			TotalPages: result.TotalPages,
			Page:       result.Pagination.Page,
			Search:     filter.Search,
			Status:     filter.Status,
			Failed:     result.Failed,
		})
		return
	}

	data := view.NewTemplateData(r, pageTitle, h.csrfToken(r), map[string]any{
		"Page":     result,
		"Filter":   filter,
		"Statuses": []Status{StatusActive, StatusInactive},
	})
	if result.Failed {
		data.ReplaceFlash(r, &shared.FlashMessage{Kind: shared.FlashError, Message: "Unable to load lists of values."})
	}
	h.render(w, templateList, data, http.StatusOK)
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request) {
	form := h.service.NewForm(shared.UserFromContext(r.Context()))
	h.renderForm(w, r, form, nil, http.StatusOK)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	user := shared.UserFromContext(r.Context())
	form, err := h.service.LoadForEdit(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.renderForm(w, r, h.service.NewForm(user), &shared.FlashMessage{
			Kind:    shared.FlashError,
			Message: "Unable to load the list of values.",
		}, http.StatusOK)
		return
	}
	h.renderForm(w, r, form, nil, http.StatusOK)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := h.restoreForm(r)
	revalidate := r.PostFormValue("validated") == "true"

	switch r.PostFormValue("action") {
	case ActionAddRow:
		fresh := form.AddRow()
		if revalidate {
			form.Revalidate(fresh)
		}
		h.renderForm(w, r, form, nil, http.StatusOK)
	case ActionRemoveRow:
		var flash *shared.FlashMessage
		if err := form.RemoveRow(r.FormValue("row")); err != nil {
			if errors.Is(err, ErrLastRow) {
				flash = &shared.FlashMessage{Kind: shared.FlashWarning, Message: "At least one value required."}
			} else {
				h.logger.Warn("remove row", slog.Any("error", err))
			}
		}
		if revalidate {
			form.Revalidate("")
		}
		h.renderForm(w, r, form, flash, http.StatusOK)
	case ActionSave:
		h.save(w, r, form)
	default:
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
	}
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, form *Form) {
	outcome, err := h.service.Save(r.Context(), form)
	var (
		verrs   ValidationErrors
		saveErr *SaveError
	)
	switch {
	case err == nil:
		msg := outcome.Message
		if msg == "" {
			msg = "List of values saved."
			if outcome.Mode == ModeEdit {
				msg = "List of values updated."
			}
		}
		h.redirectWithFlash(w, r, BasePath, shared.FlashSuccess, msg)
	case errors.As(err, &verrs):
		h.renderForm(w, r, form, &shared.FlashMessage{
			Kind:    shared.FlashWarning,
			Message: "Please fill in the highlighted fields.",
		}, http.StatusUnprocessableEntity)
	case errors.Is(err, ErrSaveInFlight):
		h.renderForm(w, r, form, &shared.FlashMessage{
			Kind:    shared.FlashWarning,
			Message: "This form is already being saved.",
		}, http.StatusConflict)
	case errors.As(err, &saveErr):
		msg := saveErr.Message
		if msg == "" {
			msg = "Unable to save the list of values."
		}
		status := http.StatusBadGateway
		if errors.Is(err, ErrSaveRejected) {
			status = http.StatusUnprocessableEntity
		}
		h.renderForm(w, r, form, &shared.FlashMessage{Kind: shared.FlashError, Message: msg}, status)
	default:
		h.logger.Error("save list", slog.Any("error", err))
		h.renderForm(w, r, form, &shared.FlashMessage{
			Kind:    shared.FlashError,
			Message: "Unable to save the list of values.",
		}, http.StatusInternalServerError)
	}
}

// restoreForm rebuilds the form posted by the master view: header fields
// by name, rows by the ordered row_id list with fields named
// rows.<id>.<field>.
func (h *Handler) restoreForm(r *http.Request) *Form {
	user := shared.UserFromContext(r.Context())
	rowIDs := r.PostForm["row_id"]
	form := h.service.RestoreForm(user,
		r.PostFormValue("form_token"),
		r.PostFormValue("id"),
		r.PostFormValue("orgId"),
		r.PostFormValue("createdBy"),
		rowIDs,
	)
	for _, name := range []string{FieldListCode, FieldListDescription, FieldActive} {
		_ = form.UpdateHeaderField(name, r.PostFormValue(name))
	}
	for _, row := range form.Rows {
		for _, field := range []string{FieldValueCode, FieldValueDescription, FieldActive} {
			_ = form.UpdateRowField(row.ID, field, r.PostFormValue(RowFieldKey(row.ID, field)))
		}
	}
	return form
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, form *Form, flash *shared.FlashMessage, status int) {
	title := "New List of Values"
	if form.Mode() == ModeEdit {
		title = "Edit List of Values"
	}
	data := view.NewTemplateData(r, title, h.csrfToken(r), map[string]any{
		"Form":    form,
		"Editing": form.Mode() == ModeEdit,
		"Action":  BasePath + "/form",
		"Back":    BasePath,
	})
	data.ReplaceFlash(r, flash)
	h.render(w, templateForm, data, status)
}

func (h *Handler) render(w http.ResponseWriter, template string, data view.TemplateData, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, data); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}

func (h *Handler) csrfToken(r *http.Request) string {
	token, _ := h.csrf.EnsureToken(shared.SessionFromContext(r.Context()))
	return token
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
