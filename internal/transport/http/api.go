package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/auth"
	"studyguru-quiz-service/internal/domain"
)

var errUnauthorized = errors.New("sign in required")

// APIConfig carries the backends of the REST endpoints.
type APIConfig struct {
	Quizzes  app.QuizSource
	Creators app.CreatorDirectory
	Library  app.OwnerLibrary
	Shares   app.ShareLister
	Attempts app.AttemptLister
	Evictor  app.ShareEvictor
	Handoffs app.HandoffStore
	Verifier *auth.Verifier
	Timeout  time.Duration
	Now      func() time.Time
}

// API serves discovery, library, report and handoff endpoints.
type API struct {
	cfg     APIConfig
	catalog *app.Catalog
}

func NewAPI(cfg APIConfig) *API {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &API{cfg: cfg, catalog: app.NewCatalog(cfg.Quizzes, cfg.Creators, cfg.Timeout)}
}

// Register mounts the endpoints on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/quizzes", a.listQuizzes)
	mux.HandleFunc("GET /api/quizzes/options", a.filterOptions)
	mux.HandleFunc("GET /api/library", a.withSession(a.listLibrary))
	mux.HandleFunc("POST /api/library/{id}/publish", a.withSession(a.togglePublish))
	mux.HandleFunc("DELETE /api/library/{id}", a.withSession(a.deleteQuiz))
	mux.HandleFunc("GET /api/reports", a.withSession(a.listReports))
	mux.HandleFunc("GET /api/reports/{id}", a.withSession(a.reportDetail))
	mux.HandleFunc("GET /api/handoffs/{ticket}", a.takeHandoff)
}

type quizListResponse struct {
	Quizzes []domain.Quiz  `json:"quizzes"`
	Filters domain.Filters `json:"filters"`
	Sort    domain.SortKey `json:"sort"`
	Total   int            `json:"total"`
}

func (a *API) listQuizzes(w http.ResponseWriter, r *http.Request) {
	all, err := a.catalog.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	filters := domain.DefaultFilters()
	filters.SearchTerm = q.Get("search")
	if v := q.Get("category"); v != "" {
		filters.Category = v
	}
	if v := q.Get("difficulty"); v != "" {
		filters.Difficulty = v
	}
	if v := q.Get("type"); v != "" {
		filters.Type = v
	}
	sortKey := app.ParseSortKey(q.Get("sort"))

	visible := app.Project(all, filters, sortKey)
	writeJSON(w, http.StatusOK, quizListResponse{Quizzes: visible, Filters: filters, Sort: sortKey, Total: len(all)})
}

func (a *API) filterOptions(w http.ResponseWriter, r *http.Request) {
	all, err := a.catalog.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Options(all))
}

func (a *API) listLibrary(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	lib, err := a.loadLibrary(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lib.Quizzes())
}

func (a *API) togglePublish(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	lib, err := a.loadLibrary(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}
	id := r.PathValue("id")
	published, err := lib.TogglePublish(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "isPublished": published})
}

func (a *API) deleteQuiz(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	lib, err := a.loadLibrary(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := lib.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listReports(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	rows, err := a.reports().List(r.Context(), session.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []domain.ShareSummary{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *API) reportDetail(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	report, err := a.reports().Detail(r.Context(), session.Email, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) reports() *app.Reports {
	return app.NewReportsWithClock(a.cfg.Shares, a.cfg.Attempts, a.cfg.Timeout, a.cfg.Now)
}

func (a *API) takeHandoff(w http.ResponseWriter, r *http.Request) {
	handoff, err := a.cfg.Handoffs.Take(r.Context(), r.PathValue("ticket"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, handoff)
}

// loadLibrary reads the owner's quizzes for one request. The optimistic list then acts as a
// request-scoped transaction: a rejected write restores the list the response is built from.
func (a *API) loadLibrary(ctx context.Context, session *domain.Session) (*app.Library, error) {
	lib := app.NewLibraryWithEvictor(a.cfg.Library, a.cfg.Evictor, session.Email, a.cfg.Timeout)
	if err := lib.Load(ctx); err != nil {
		return nil, err
	}
	return lib, nil
}

type sessionHandler func(http.ResponseWriter, *http.Request, *domain.Session)

// withSession rejects requests without a valid bearer token.
func (a *API) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Verifier == nil {
			writeError(w, errUnauthorized)
			return
		}
		token := auth.BearerToken(r.Header.Get("Authorization"))
		session, err := auth.NewTokenSession(a.cfg.Verifier, token).GetCurrentSession(r.Context())
		if err != nil || session == nil {
			writeError(w, errUnauthorized)
			return
		}
		next(w, r, session)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	notice := app.NoticeFor(err)
	switch {
	case errors.Is(err, errUnauthorized):
		status = http.StatusUnauthorized
		notice = domain.Notice{Severity: domain.SeverityError, Title: "Unauthorized", Message: errUnauthorized.Error()}
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrShareNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrHandoffNotFound):
		status = http.StatusNotFound
		notice = domain.Notice{Severity: domain.SeverityError, Title: "Error", Message: "Attempt ticket not found or already used"}
	case errors.Is(err, domain.ErrNetworkTimeout):
		status = http.StatusGatewayTimeout
	default:
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, map[string]domain.Notice{"error": notice})
}
