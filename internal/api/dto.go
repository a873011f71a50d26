package api

import "github.com/starford/leadsync/internal/models"

// CreateNoteRequest is the request body for saving a note.
type CreateNoteRequest struct {
	Email string `json:"email" example:"john@example.com" validate:"required"`
	Note  string `json:"note" example:"Called customer, interested in premium plan." validate:"required"`
}

// SummaryRequest is the request body for a standalone summary.
type SummaryRequest struct {
	Note string `json:"note" example:"Customer wants to upgrade to enterprise plan with 100 users" validate:"required"`
}

// SummaryResponse carries a generated or fallback summary.
type SummaryResponse struct {
	Summary string `json:"summary" example:"Customer requests enterprise plan upgrade for 100 users." validate:"required"`
}

// NoteResponse is a stored note (aliased from the domain layer).
type NoteResponse = models.NoteRecord

// LeadResponse is a lead (aliased from the domain layer).
type LeadResponse = models.Lead

// InfoResponse is returned by GET /.
type InfoResponse struct {
	Message string `json:"message" example:"Lead Sync + AI Notes API"`
	Status  string `json:"status" example:"running"`
	Version string `json:"version" example:"1.0.0"`
}

// ReadyResponse reports readiness and generator reachability.
type ReadyResponse struct {
	Status    string `json:"status" example:"ok"`
	Generator string `json:"generator" example:"up" enums:"up,down"`
}
