package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/leadsync/internal/models"
	"github.com/starford/leadsync/internal/noteservice"
	"github.com/starford/leadsync/internal/storage"
	"github.com/starford/leadsync/internal/summary"
	"github.com/starford/leadsync/internal/testutil"
)

func testServer(t *testing.T, leads noteservice.LeadSource) (*Server, storage.Store) {
	t.Helper()
	store := testutil.TestStore(t)
	gen := &testutil.Generator{Text: "Customer interested in premium plan."}
	svc := noteservice.NewService(leads, summary.NewSummarizer(gen, 0, testutil.Logger()), store,
		noteservice.WithLogger(testutil.Logger()))
	return New(svc, "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper, so the handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_leads":
		result, err = srv.listLeads(ctx, req)
	case "summarize_note":
		result, err = srv.summarizeNote(ctx, req)
	case "save_note":
		result, err = srv.saveNote(ctx, req)
	case "get_note":
		result, err = srv.getNote(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSaveAndGetNote(t *testing.T) {
	srv, _ := testServer(t, testutil.Leads{})

	r := callTool(t, srv, "save_note", map[string]any{
		"email": "john@example.com",
		"note":  "Called customer, interested in premium plan.",
	})
	if r.IsError {
		t.Fatalf("save_note error: %s", resultText(r))
	}

	r = callTool(t, srv, "get_note", map[string]any{"email": "john@example.com"})
	var rec models.NoteRecord
	if err := json.Unmarshal([]byte(resultText(r)), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Summary == nil || *rec.Summary != "Customer interested in premium plan." {
		t.Errorf("summary = %v", rec.Summary)
	}
}

func TestSaveNoteInvalidEmail(t *testing.T) {
	srv, store := testServer(t, testutil.Leads{})
	r := callTool(t, srv, "save_note", map[string]any{"email": "nope", "note": "hello"})
	if !r.IsError {
		t.Error("expected error for invalid email")
	}
	all, _ := store.GetAll(context.Background())
	if len(all) != 0 {
		t.Errorf("store has %d records", len(all))
	}
}

func TestSaveNoteMissingArgument(t *testing.T) {
	srv, _ := testServer(t, testutil.Leads{})
	r := callTool(t, srv, "save_note", map[string]any{"email": "a@b.co"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestGetNoteMissing(t *testing.T) {
	srv, _ := testServer(t, testutil.Leads{})
	r := callTool(t, srv, "get_note", map[string]any{"email": "nobody@example.com"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
	if got := resultText(r); got != "no note for nobody@example.com" {
		t.Errorf("text = %q", got)
	}
}

func TestListNotes(t *testing.T) {
	srv, store := testServer(t, testutil.Leads{})
	ctx := context.Background()
	_, _ = store.Save(ctx, "a@b.co", "a", nil)
	_, _ = store.Save(ctx, "c@d.co", "c", nil)

	r := callTool(t, srv, "list_notes", map[string]any{})
	var all map[string]models.NoteRecord
	if err := json.Unmarshal([]byte(resultText(r)), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d notes, want 2", len(all))
	}
}

func TestSummarizeNote(t *testing.T) {
	srv, store := testServer(t, testutil.Leads{})
	r := callTool(t, srv, "summarize_note", map[string]any{"note": "Customer wants premium."})
	if got := resultText(r); got != "Customer interested in premium plan." {
		t.Errorf("summary = %q", got)
	}
	all, _ := store.GetAll(context.Background())
	if len(all) != 0 {
		t.Error("summarize_note must not persist")
	}
}

func TestListLeads(t *testing.T) {
	srv, _ := testServer(t, testutil.Leads{Leads: []models.Lead{{Name: "A", Email: "a@b.co", Phone: "1"}}})
	r := callTool(t, srv, "list_leads", map[string]any{})
	var leads []models.Lead
	if err := json.Unmarshal([]byte(resultText(r)), &leads); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(leads) != 1 || leads[0].Email != "a@b.co" {
		t.Errorf("leads = %+v", leads)
	}
}

func TestListLeadsFailure(t *testing.T) {
	srv, _ := testServer(t, testutil.Leads{Err: errors.New("unreachable")})
	r := callTool(t, srv, "list_leads", map[string]any{})
	if !r.IsError {
		t.Error("expected tool error")
	}
}

func TestNotesResource(t *testing.T) {
	srv, store := testServer(t, testutil.Leads{})
	_, _ = store.Save(context.Background(), "a@b.co", "a", nil)

	contents, err := srv.readNotesResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != notesURI {
		t.Fatalf("contents = %+v", contents)
	}
	if tc.Text != `{"a@b.co":{"email":"a@b.co","note":"a","summary":null}}` {
		t.Errorf("text = %s", tc.Text)
	}
}

func TestToolsListed(t *testing.T) {
	srv, _ := testServer(t, testutil.Leads{})

	resp := srv.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"list_leads", "summarize_note", "save_note", "get_note", "list_notes"} {
		if !strings.Contains(string(raw), `"name":"`+name+`"`) {
			t.Errorf("tools/list missing %s: %s", name, raw)
		}
	}
}
