// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the lead and note operations to LLM clients via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/leadsync/internal/apperr"
	"github.com/starford/leadsync/internal/models"
	"github.com/starford/leadsync/internal/noteservice"
)

const notesURI = "leadsync://notes"

// Server wraps the MCP server with leadsync tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"leadsync",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_leads",
		mcp.WithDescription("Fetch the current leads (name, email, phone) from the contacts source."),
	), s.listLeads)

	s.mcp.AddTool(mcp.NewTool("summarize_note",
		mcp.WithDescription("Summarize a sales note in at most 20 words without saving it."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Free-text note")),
	), s.summarizeNote)

	s.mcp.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Save a note for a lead, replacing any earlier note for the same email. "+
			"The note is summarized before it is stored."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Lead email address")),
		mcp.WithString("note", mcp.Required(), mcp.Description("Free-text note")),
	), s.saveNote)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read the stored note and summary for a lead."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Lead email address")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List every stored note keyed by lead email."),
	), s.listNotes)

	s.mcp.AddResource(
		mcp.NewResource(notesURI, "Stored notes",
			mcp.WithResourceDescription("All stored notes keyed by lead email."),
			mcp.WithMIMEType("application/json"),
		),
		s.readNotesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listLeads(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	leads, err := s.svc.ListLeads(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(leads)
}

func (s *Server) summarizeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.svc.Summarize(ctx, note)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := req.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.SaveNote(ctx, models.NoteInput{Email: email, Note: note})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rec)
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := req.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.GetNote(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no note for %s", email)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rec)
}

func (s *Server) listNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(notes)
}

func (s *Server) readNotesResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	notes, err := s.svc.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(notes)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      notesURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
