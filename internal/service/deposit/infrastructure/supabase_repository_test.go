package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/deposit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupabase(t *testing.T, handler http.HandlerFunc) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := supabase.New(supabase.Config{URL: srv.URL, APIKey: "service-key"})
	require.NoError(t, err)
	return client
}

func TestSupabaseFindByIDNotFound(t *testing.T) {
	client := newSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.missing", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNotAcceptable)
		w.Write([]byte(`{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`))
	})
	_, err := NewSupabaseDepositRepository(client).FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrDepositNotFound)
}

func TestSupabaseUpdateOnlyTouchesPendingRows(t *testing.T) {
	client := newSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.pending", r.URL.Query().Get("status"))
		w.Write([]byte(`[]`))
	})
	err := NewSupabaseDepositRepository(client).UpdateAdminNotes(context.Background(), "d-1", "bad receipt")
	assert.ErrorIs(t, err, domain.ErrNotPending)
}

func TestSupabaseCreateSendsRow(t *testing.T) {
	var got map[string]interface{}
	client := newSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/deposit_requests", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{}]`))
	})
	d := &domain.DepositRequest{ID: "d-1", UserID: "user-1", Status: domain.StatusPending, ProofURL: "https://x/p.png", UserNotes: "joint account"}
	require.NoError(t, NewSupabaseDepositRepository(client).Create(context.Background(), d))

	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, "https://x/p.png", got["proof_of_payment_url"])
	assert.Equal(t, "joint account", got["notes"])
	assert.Nil(t, got["admin_notes"])
	assert.Nil(t, got["account_number"])
}

func TestSupabaseProcessorCallsProcedure(t *testing.T) {
	client := newSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/process_deposit_request", r.URL.Path)
		var params map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, map[string]string{"request_id": "d-1", "admin_id": "admin-1", "action": "approve"}, params)
		w.Write([]byte(`true`))
	})
	ok, err := NewSupabaseDepositProcessor(client).Process(context.Background(), "d-1", "admin-1", domain.ActionApprove)
	require.NoError(t, err)
	assert.True(t, ok)
}
