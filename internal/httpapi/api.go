package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"crowdfund-go/internal/services/projects"
)

type projectJSON struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
	PledgeGoal  float64   `json:"pledge_goal"`
	Collected   float64   `json:"collected"`
	Donors      int       `json:"donors"`
	Active      bool      `json:"active"`
	Description string    `json:"description"`
}

func toProjectJSON(listings []projects.Listing) []projectJSON {
	out := make([]projectJSON, 0, len(listings))
	for _, l := range listings {
		out = append(out, projectJSON{
			ID:          l.ID,
			Title:       l.Title,
			Category:    l.Category,
			CreatorID:   l.CreatorID,
			CreatorName: l.CreatorName,
			CreatedAt:   l.CreatedAt,
			PledgeGoal:  l.PledgeGoal,
			Collected:   l.Collected,
			Donors:      l.Donors(),
			Active:      l.Active,
			Description: l.Description,
		})
	}
	return out
}

// searchRequest mirrors the search form. Missing bounds are left nil.
type searchRequest struct {
	Category      string   `json:"category"`
	FromPledged   *float64 `json:"from_pledged"`
	ToPledged     *float64 `json:"to_pledged"`
	FromCollected *float64 `json:"from_collected"`
	ToCollected   *float64 `json:"to_collected"`
}

func (req searchRequest) submission() projects.FormSubmission {
	values := map[string]string{projects.FieldCategory: req.Category}
	bounds := map[string]*float64{
		projects.FieldFromPledged:   req.FromPledged,
		projects.FieldToPledged:     req.ToPledged,
		projects.FieldFromCollected: req.FromCollected,
		projects.FieldToCollected:   req.ToCollected,
	}
	for field, v := range bounds {
		if v != nil {
			values[field] = strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}
	return projects.SubmissionOf(values)
}

func (h *Handler) apiListProjects(w http.ResponseWriter, r *http.Request) {
	listings, err := h.projects.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectJSON(listings))
}

func (h *Handler) apiSearchProjects(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	criteria, errs := projects.ValidateSearch(req.submission())
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string][]string{"errors": errs})
		return
	}

	listings, err := h.projects.Search(r.Context(), criteria)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectJSON(listings))
}

func (h *Handler) apiStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Current())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
