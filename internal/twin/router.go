// Package twin is an in-memory stand-in for the Story Spoiler API. It answers
// the five endpoints with the same status codes and messages as the real
// service, so the scenarios can run offline and in unit tests.
package twin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"storyspoiler-e2e/internal/apiclient"
	"storyspoiler-e2e/internal/storyspoiler"
)

// Messages only the twin produces; the scenarios never assert on them.
const (
	msgInvalidCredentials = "Invalid username or password!"
	msgUnauthorized       = "Unauthorized"
	msgRequiredFields     = "Title and description are required!"
	msgInvalidBody        = "Invalid request body"
)

// Handler holds all API handler state.
type Handler struct {
	store  *MemoryStore
	creds  apiclient.Credentials
	logger zerolog.Logger
}

// NewHandler creates a handler that accepts only creds at login.
func NewHandler(s *MemoryStore, creds apiclient.Credentials, logger zerolog.Logger) *Handler {
	return &Handler{store: s, creds: creds, logger: logger}
}

// Routes mounts the Story Spoiler API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post(storyspoiler.AuthenticationEndpoint, h.Authenticate)

	r.Route("/api/Story", func(r chi.Router) {
		r.Use(h.authMiddleware)

		r.Post("/Create", h.CreateStory)
		r.Put("/Edit/*", h.EditStory)
		r.Get("/All", h.ListStories)
		r.Delete("/Delete/*", h.DeleteStory)
	})
}

// authMiddleware accepts only bearer tokens issued by Authenticate.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token == "" || !h.store.ValidToken(token) {
			writeMsg(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Authenticate handles POST /api/User/Authentication
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req apiclient.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if req.Username != h.creds.Username || req.Password != h.creds.Password {
		writeMsg(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token := h.store.IssueToken(req.Username)
	h.logger.Debug().Str("username", req.Username).Msg("token issued")

	writeJSON(w, http.StatusOK, map[string]any{
		"username":    req.Username,
		"accessToken": token,
	})
}

// CreateStory handles POST /api/Story/Create
func (h *Handler) CreateStory(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	rec := h.store.Create(draft)
	h.logger.Debug().Str("story_id", rec.StoryID).Msg("story created")

	writeJSON(w, http.StatusCreated, storyspoiler.CreateResponse{
		StoryID: rec.StoryID,
		Msg:     storyspoiler.MsgCreated,
	})
}

// EditStory handles PUT /api/Story/Edit/{id}
func (h *Handler) EditStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")

	var draft storyspoiler.StoryDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeMsg(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if _, ok := h.store.Update(id, draft); !ok {
		writeMsg(w, http.StatusNotFound, storyspoiler.MsgNotFound)
		return
	}

	writeMsg(w, http.StatusOK, storyspoiler.MsgEdited)
}

// ListStories handles GET /api/Story/All
func (h *Handler) ListStories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

// DeleteStory handles DELETE /api/Story/Delete/{id}
func (h *Handler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")

	if !h.store.Delete(id) {
		writeMsg(w, http.StatusBadRequest, storyspoiler.MsgUnableToDelete)
		return
	}

	writeMsg(w, http.StatusOK, storyspoiler.MsgDeleted)
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (storyspoiler.StoryDraft, bool) {
	var draft storyspoiler.StoryDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeMsg(w, http.StatusBadRequest, msgInvalidBody)
		return draft, false
	}

	if strings.TrimSpace(draft.Title) == "" || strings.TrimSpace(draft.Description) == "" {
		writeMsg(w, http.StatusBadRequest, msgRequiredFields)
		return draft, false
	}

	return draft, true
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, storyspoiler.Envelope{Msg: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
