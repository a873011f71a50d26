package leads

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/leadsync/internal/apperr"
	"github.com/starford/leadsync/internal/models"
)

func serve(t *testing.T, status int, body string) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewFetcher(srv.URL+"/users", srv.Client())
}

func TestFetchLeads(t *testing.T) {
	f := serve(t, http.StatusOK, `[
		{"id": 1, "name": "Leanne Graham", "email": "Sincere@april.biz", "phone": "1-770-736-8031 x56442",
		 "address": {"city": "Gwenborough"}, "company": {"name": "Romaguera-Crona"}},
		{"id": 2, "name": "Ervin Howell", "email": "Shanna@melissa.tv"},
		{"id": 3, "email": "Nathan@yesenia.net", "phone": 5551234}
	]`)

	got, err := f.FetchLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Lead{
		{Name: "Leanne Graham", Email: "Sincere@april.biz", Phone: "1-770-736-8031 x56442"},
		{Name: "Ervin Howell", Email: "Shanna@melissa.tv", Phone: ""},
		{Name: "", Email: "Nathan@yesenia.net", Phone: "5551234"},
	}, got)
}

func TestFetchLeadsEmpty(t *testing.T) {
	got, err := serve(t, http.StatusOK, `[]`).FetchLeads(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchLeadsStatusError(t *testing.T) {
	_, err := serve(t, http.StatusServiceUnavailable, `oops`).FetchLeads(context.Background())
	require.ErrorIs(t, err, apperr.ErrFetch)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchLeadsBadBody(t *testing.T) {
	_, err := serve(t, http.StatusOK, `{"users": []}`).FetchLeads(context.Background())
	assert.ErrorIs(t, err, apperr.ErrFetch)
}

func TestFetchLeadsInvalidEmail(t *testing.T) {
	_, err := serve(t, http.StatusOK, `[{"name": "Bad", "email": "invalid-email", "phone": "1"}]`).
		FetchLeads(context.Background())
	assert.ErrorIs(t, err, apperr.ErrFetch)
	assert.NotErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "record 0")
}

func TestFetchLeadsUnreachable(t *testing.T) {
	_, err := NewFetcher("http://127.0.0.1:1/users", nil).FetchLeads(context.Background())
	assert.ErrorIs(t, err, apperr.ErrFetch)
}
