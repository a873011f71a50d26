package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/leadsync/internal/models"
	"github.com/starford/leadsync/internal/noteservice"
)

// Version is reported by GET /.
const Version = "1.0.0"

// Pinger reports whether the generation backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds API route handlers.
type Handler struct {
	svc       *noteservice.Service
	generator Pinger
}

// NewHandler creates a new Handler. generator may be nil, in which case
// readiness always reports the generator as down.
func NewHandler(svc *noteservice.Service, generator Pinger) *Handler {
	return &Handler{svc: svc, generator: generator}
}

// emailParam extracts the lead email from the URL, accepting %40 for '@'.
func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Info handles GET /.
//
//	@Summary		API information
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	InfoResponse
//	@Router			/ [get]
func (h *Handler) Info(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Message: "Lead Sync + AI Notes API",
		Status:  "running",
		Version: Version,
	})
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready. A down generator does not make the
// service unready since summaries degrade to the fallback.
//
//	@Summary		Readiness with generator reachability
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	ReadyResponse
//	@Router			/health/ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := "down"
	if h.generator != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.generator.Ping(ctx); err == nil {
			status = "up"
		}
	}
	writeJSON(w, http.StatusOK, ReadyResponse{Status: "ok", Generator: status})
}

// ListLeads handles GET /leads.
//
//	@Summary		Fetch leads from the external contacts source
//	@Tags			leads
//	@Produce		json
//	@Success		200	{array}		LeadResponse
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/leads [get]
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.svc.ListLeads(r.Context())
	if err != nil {
		writeError(w, "list leads", err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// CreateNote handles POST /notes.
//
//	@Summary		Save a note for a lead and summarize it
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to save"
//	@Success		200		{object}	NoteResponse
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	rec, err := h.svc.SaveNote(r.Context(), models.NoteInput{Email: req.Email, Note: req.Note})
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListNotes handles GET /notes.
//
//	@Summary		All stored notes keyed by email
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	map[string]NoteResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListNotes(r.Context())
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// GetNote handles GET /notes/{email}.
//
//	@Summary		Stored note for one lead
//	@Tags			notes
//	@Produce		json
//	@Param			email	path		string	true	"Lead email"
//	@Success		200		{object}	NoteResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{email} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetNote(r.Context(), emailParam(r))
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Summarize handles POST /summary.
//
//	@Summary		Summarize a note without saving it
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SummaryRequest	true	"Note to summarize"
//	@Success		200		{object}	SummaryResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/summary [post]
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	text, err := h.svc.Summarize(r.Context(), req.Note)
	if err != nil {
		writeError(w, "summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Summary: text})
}
