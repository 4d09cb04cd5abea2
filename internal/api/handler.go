// Package api exposes the scheme catalog and assessment sessions over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/observability"
	"scheme-eligibility/internal/models"
	"scheme-eligibility/internal/session"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Catalog is the read side of the scheme catalog.
type Catalog interface {
	Search(query, category string) []*models.Scheme
	MustGet(id string) (*models.Scheme, error)
	Categories() []models.CategoryLabel
}

type Handler struct {
	catalog        Catalog
	sessions       *session.Store
	obs            *observability.Observability
	logger         Logger
	requestTimeout time.Duration
}

func New(catalog Catalog, sessions *session.Store, obs *observability.Observability, log Logger, requestTimeout time.Duration) *Handler {
	return &Handler{
		catalog:        catalog,
		sessions:       sessions,
		obs:            obs,
		logger:         log,
		requestTimeout: requestTimeout,
	}
}

// Register mounts the API routes under /api/v1.
func (h *Handler) Register(r chi.Router) {
	apiRouter := chi.NewRouter()
	apiRouter.Use(chimiddleware.RequestID)
	apiRouter.Use(recovery(h.logger))
	apiRouter.Use(requestLogger(h.logger, h.obs))
	if h.requestTimeout > 0 {
		apiRouter.Use(chimiddleware.Timeout(h.requestTimeout))
	}

	apiRouter.Get("/schemes", h.handleListSchemes)
	apiRouter.Get("/schemes/{schemeID}", h.handleGetScheme)
	apiRouter.Get("/categories", h.handleListCategories)

	apiRouter.Post("/sessions", h.handleCreateSession)
	apiRouter.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleDeleteSession)
		r.Post("/scheme", h.handleSelectScheme)
		r.Post("/profile/start", h.handleStartProfile)
		r.Patch("/profile", h.handleUpdateProfile)
		r.Post("/profile/voice", h.handleVoice)
		r.Post("/evaluate", h.handleEvaluate)
		r.Post("/explain", h.handleExplain)
		r.Post("/back", h.handleGoBack)
		r.Post("/reset", h.handleReset)
	})

	r.Mount("/api/v1", apiRouter)
}

func (h *Handler) handleListSchemes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	schemes := h.catalog.Search(q.Get("q"), q.Get("category"))
	writeJSON(w, http.StatusOK, SchemeListResponse{Schemes: schemes, Count: len(schemes)})
}

func (h *Handler) handleGetScheme(w http.ResponseWriter, r *http.Request) {
	scheme, err := h.catalog.MustGet(chi.URLParam(r, "schemeID"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, scheme)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": h.catalog.Categories()})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	c := h.sessions.Create()
	writeJSON(w, http.StatusCreated, newSessionResponse(c.ID(), c.Snapshot()))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(c.ID(), c.Snapshot()))
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectSchemeRequest struct {
	SchemeID string `json:"schemeId"`
}

func (h *Handler) handleSelectScheme(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectSchemeRequest
	if !h.decode(w, r, c, &req) {
		return
	}
	if req.SchemeID == "" {
		writeError(w, apperrors.NewInvalidInputError("schemeId is required"), newSessionResponse(c.ID(), c.Snapshot()))
		return
	}
	st, err := c.SelectScheme(req.SchemeID)
	h.respond(w, c, st, err)
}

func (h *Handler) handleStartProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	st, err := c.StartProfileValidation()
	h.respond(w, c, st, err)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	var delta models.UserProfile
	if !h.decode(w, r, c, &delta) {
		return
	}
	st, err := c.UpdateProfile(delta)
	h.respond(w, c, st, err)
}

type voiceRequest struct {
	Transcript string `json:"transcript"`
}

func (h *Handler) handleVoice(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	var req voiceRequest
	if !h.decode(w, r, c, &req) {
		return
	}
	st, fields, err := c.ApplyVoiceTranscript(req.Transcript)
	if err != nil {
		writeError(w, err, newSessionResponse(c.ID(), st))
		return
	}
	writeJSON(w, http.StatusOK, VoiceResponse{Session: newSessionResponse(c.ID(), st), Fields: fields})
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	st, err := c.Evaluate()
	h.respond(w, c, st, err)
}

func (h *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	st, err := c.Explain(r.Context())
	if err != nil {
		h.logger.Warn("explanation failed", map[string]interface{}{
			"sessionId": c.ID(),
			"requestId": chimiddleware.GetReqID(r.Context()),
			"error":     err.Error(),
		})
	}
	h.respond(w, c, st, err)
}

func (h *Handler) handleGoBack(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, c, c.GoBack(), nil)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, c, c.Reset(), nil)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	c, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err, nil)
		return nil, false
	}
	return c, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, c *session.Controller, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, apperrors.NewInvalidInputError(fmt.Sprintf("invalid request body: %v", err)),
			newSessionResponse(c.ID(), c.Snapshot()))
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, c *session.Controller, st session.State, err error) {
	resp := newSessionResponse(c.ID(), st)
	if err != nil {
		writeError(w, err, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
