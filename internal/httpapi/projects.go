package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"crowdfund-go/internal/model"
	"crowdfund-go/internal/services/projects"
	"crowdfund-go/internal/session"
)

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	listings, err := h.projects.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, "index", http.StatusOK, page{
		Title:    "Home",
		LoggedIn: session.FromContext(r.Context()) != "",
		Projects: listings,
		Stats:    h.stats.Current(),
	})
}

func (h *Handler) handleNew(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()) == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.render(w, r, "new", http.StatusOK, page{Title: "New Project", LoggedIn: true})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	actor := session.FromContext(r.Context())

	project, err := h.projects.Create(r.Context(), actor, sub)
	var verrs projects.ValidationErrors
	if errors.As(err, &verrs) {
		h.render(w, r, "new", http.StatusOK, page{Title: "New Project", LoggedIn: true, Errors: verrs, Form: sub.Fields()})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/projects/"+project.ID, http.StatusSeeOther)
}

func (h *Handler) handleEditForm(w http.ResponseWriter, r *http.Request) {
	actor := session.FromContext(r.Context())
	if actor == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if project.CreatorID != actor {
		h.fail(w, r, projects.ErrForbidden)
		return
	}
	h.render(w, r, "edit", http.StatusOK, page{Title: "Edit Project", LoggedIn: true, Form: projectForm(project)})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	actor := session.FromContext(r.Context())

	project, err := h.projects.Update(r.Context(), actor, sub)
	var verrs projects.ValidationErrors
	if errors.As(err, &verrs) {
		h.render(w, r, "edit", http.StatusOK, page{Title: "Edit Project", LoggedIn: true, Errors: verrs, Form: sub.Fields()})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/projects/"+project.ID, http.StatusSeeOther)
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	h.renderDetail(w, r, chi.URLParam(r, "id"), page{})
}

// renderDetail loads the project view and fills in what the current user may
// do with it. extra carries errors or the donation flag.
func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, id string, extra page) {
	detail, err := h.projects.Detail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	actor := session.FromContext(r.Context())
	isOwner := actor != "" && actor == detail.Project.CreatorID

	data := extra
	data.Title = detail.Project.Title
	data.LoggedIn = actor != ""
	data.Detail = detail
	data.CanEdit = isOwner
	data.CanDonate = actor != "" && !isOwner
	data.CanComment = actor != ""
	data.OpenToDonations = detail.Project.Active
	h.render(w, r, "single", http.StatusOK, data)
}

func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	actor := session.FromContext(r.Context())
	id := sub.Value(projects.FieldProjectID)

	_, err := h.projects.Donate(r.Context(), actor, sub)
	var verrs projects.ValidationErrors
	if errors.As(err, &verrs) {
		h.renderDetail(w, r, id, page{Errors: verrs, Form: sub.Fields()})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderDetail(w, r, id, page{DonationSuccessful: true})
}

func (h *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	actor := session.FromContext(r.Context())

	comment, err := h.projects.Comment(r.Context(), actor, sub)
	var verrs projects.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string][]string{"errors": verrs})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.views.renderComment(w, comment); err != nil {
		h.fail(w, r, err)
	}
}

func (h *Handler) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "search", http.StatusOK, page{Title: "Search", LoggedIn: session.FromContext(r.Context()) != ""})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	loggedIn := session.FromContext(r.Context()) != ""

	criteria, errs := projects.ValidateSearch(sub)
	if len(errs) > 0 {
		h.render(w, r, "search", http.StatusOK, page{Title: "Search", LoggedIn: loggedIn, Errors: errs, Form: sub.Fields()})
		return
	}

	listings, err := h.projects.Search(r.Context(), criteria)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, "search-result", http.StatusOK, page{Title: "Search Result", LoggedIn: loggedIn, Projects: listings})
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	h.changeLifecycle(w, r, h.projects.Activate)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.changeLifecycle(w, r, h.projects.Deactivate)
}

func (h *Handler) changeLifecycle(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, actorID, id string) error) {
	id := chi.URLParam(r, "id")
	if err := change(r.Context(), session.FromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/projects/"+id, http.StatusFound)
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (projects.FormSubmission, bool) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return projects.FormSubmission{}, false
	}
	return projects.NewFormSubmission(r.PostForm), true
}

func projectForm(p model.Project) map[string]string {
	return map[string]string{
		projects.FieldID:          p.ID,
		projects.FieldTitle:       p.Title,
		projects.FieldCategory:    p.Category,
		projects.FieldGoal:        strconv.FormatFloat(p.PledgeGoal, 'f', -1, 64),
		projects.FieldDescription: p.Description,
	}
}
