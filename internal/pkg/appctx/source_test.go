package appctx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fundgate/internal/pkg/supabase"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSupabaseProfileSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/profiles":
			if r.URL.Query().Get("id") == "eq.ghost" {
				w.Write([]byte(`[]`))
				return
			}
			w.Write([]byte(`[{"id":"user-1","full_name":"Ada Obi","email":"ada@example.com","subscription_tier":"premium","subscription_status":"active"}]`))
		case "/rest/v1/user_roles":
			assert.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))
			w.Write([]byte(`[{"role":"admin"},{"role":"educator"}]`))
		}
	}))
	defer srv.Close()
	client, err := supabase.New(supabase.Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)
	src := NewSupabaseProfileSource(client)

	p, err := src.LoadProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", p.FullName)
	assert.Equal(t, "premium", p.SubscriptionTier)

	p, err = src.LoadProfile(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, Profile{UserID: "ghost"}, p)

	roles, err := src.LoadRoles(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "educator"}, roles)
}

func TestGormProfileSource(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `profiles` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "subscription_tier", "subscription_status"}).
			AddRow("user-1", "Ada Obi", "ada@example.com", nil, nil))
	mock.ExpectQuery("SELECT `role` FROM `user_roles` WHERE user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

	src := NewGormProfileSource(db)
	p, err := src.LoadProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, Profile{UserID: "user-1", FullName: "Ada Obi", Email: "ada@example.com"}, p)

	roles, err := src.LoadRoles(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}
