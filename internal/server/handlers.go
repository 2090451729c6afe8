package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/llm"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/session"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/storage"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/story"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/tts"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// statusFor maps engine and library errors onto HTTP status codes.
// Upstream model failures are the backend's fault, not the client's.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidChoice),
		errors.Is(err, session.ErrInvalidConfig),
		errors.Is(err, session.ErrEdited):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrMalformedReply):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// --- Story handlers ---

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var cfg story.Config
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	view, err := s.engine.Initialize(r.Context(), cfg)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, view)
}

type continueRequest struct {
	StoryID    string  `json:"story_id"`
	ChoiceID   *int    `json:"choice_id"`
	CustomText *string `json:"custom_text"`
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	var req continueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	var (
		view *session.View
		err  error
	)
	switch {
	case req.ChoiceID != nil:
		view, err = s.engine.AdvanceChoice(r.Context(), req.StoryID, *req.ChoiceID)
	case req.CustomText != nil:
		view, err = s.engine.AdvanceText(r.Context(), req.StoryID, *req.CustomText)
	default:
		writeError(w, http.StatusBadRequest, "either choice_id or custom_text is required")
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if view.IsComplete {
		s.archiveStory(r, req.StoryID)
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	text, err := s.engine.CompleteText(id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, text)
}

type ttsRequest struct {
	StoryID string  `json:"story_id"`
	Speed   float64 `json:"speed"`
}

type ttsResponse struct {
	AudioURL string `json:"audio_url"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Speed == 0 {
		req.Speed = 1.0
	}
	if req.Speed < 0.5 || req.Speed > 2.0 {
		writeError(w, http.StatusBadRequest, "speed must be between 0.5 and 2.0")
		return
	}

	// A titled story narrates with its title announcement up front. The
	// archive is refreshed so the library row carries the title too.
	if _, err := s.engine.EnsureTitle(r.Context(), req.StoryID); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.archiveStory(r, req.StoryID)

	text, err := s.engine.CompleteText(req.StoryID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	filename, err := s.narrator.AudioFor(r.Context(), req.StoryID, text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "generating audio: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ttsResponse{
		AudioURL: tts.URL(s.cfg.Server.BaseURL, filename, req.Speed),
	})
}

type editRequest struct {
	StoryID          string `json:"story_id"`
	EditInstructions string `json:"edit_instructions"`
}

type editResponse struct {
	Success    bool     `json:"success"`
	Paragraphs []string `json:"paragraphs"`
	Title      string   `json:"title,omitempty"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.EditInstructions == "" {
		writeError(w, http.StatusBadRequest, "edit_instructions is required")
		return
	}

	result, err := s.engine.Edit(r.Context(), req.StoryID, req.EditInstructions)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	s.archiveStory(r, req.StoryID)

	writeJSON(w, http.StatusOK, editResponse{
		Success:    true,
		Paragraphs: result.Paragraphs,
		Title:      result.Title,
	})
}

// archiveStory copies a finished story into the library, upserting so a
// later title lands on the same row. Best effort: a library failure
// never fails the request that finished the story. Unfinished stories
// are skipped; the library holds finished text only.
func (s *Server) archiveStory(r *http.Request, id string) {
	snap, err := s.engine.Snapshot(id)
	if err != nil {
		log.Warn("snapshotting finished story", "story", id, "err", err)
		return
	}
	if !snap.Complete {
		return
	}

	err = s.library.SaveStory(r.Context(), &storage.Story{
		ID:         snap.ID,
		Title:      snap.Title,
		Genre:      string(snap.Config.PrimaryType),
		Length:     string(snap.Config.Length),
		Paragraphs: snap.Paragraphs,
		CreatedAt:  snap.CreatedAt,
	})
	if err != nil {
		log.Warn("archiving finished story", "story", id, "err", err)
	}
}

// --- Library handlers ---

func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{Genre: r.URL.Query().Get("genre")}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			opts.Offset = n
		}
	}

	stories, err := s.library.ListStories(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if stories == nil {
		stories = []storage.Story{}
	}
	writeJSON(w, http.StatusOK, stories)
}

func (s *Server) handleGetLibraryStory(w http.ResponseWriter, r *http.Request) {
	st, err := s.library.GetStory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteLibraryStory(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeleteStory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Status handlers ---

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "مرحباً بك في واجهة برمجة تطبيقات راوي",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":        "healthy",
		"provider_api":  s.cfg.Provider.APIKey != "",
		"audio_storage": dirExists(s.narrator.Dir()),
	}
	if s.cfg.Provider.APIKey == "" {
		health["status"] = "degraded"
		health["message"] = "provider API key is not set, story generation will not work"
	}

	writeJSON(w, http.StatusOK, health)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
