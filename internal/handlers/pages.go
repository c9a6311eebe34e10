package handlers

import (
	"net/http"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/gorilla/mux"
)

// PageResponse describes a page route for the UI shell. Rendering happens client-side.
type PageResponse struct {
	Page          string            `json:"page"`
	Authenticated bool              `json:"authenticated"`
	User          *models.User      `json:"user,omitempty"`
	Params        map[string]string `json:"params,omitempty"`
	Redirect      string            `json:"redirect,omitempty"`
}

// PageHandler serves page routes behind the route guards
type PageHandler struct {
	session SessionView
}

// NewPageHandler creates a new page handler
func NewPageHandler(session SessionView) *PageHandler {
	return &PageHandler{session: session}
}

// Page returns a handler describing the named page
func (h *PageHandler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := PageResponse{
			Page:          name,
			Authenticated: h.session.IsAuthenticated(),
			User:          h.session.User(),
			Params:        mux.Vars(r),
		}
		if redirect := r.URL.Query().Get("redirect"); redirect != "" {
			resp.Redirect = SafeRedirect(redirect)
		}
		writeJSONResponse(w, http.StatusOK, resp)
	}
}
