package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/notification/domain"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func sample() *domain.Notification {
	return &domain.Notification{
		ID: "n-1", UserID: "u-1", Type: "deposit.approved", Title: "Deposit approved",
		Message: "ok", Data: map[string]string{"amount": "5000"}, CreatedAt: time.Now(),
	}
}

func TestSupabaseSaveIgnoresDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/notifications", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key"}`))
	}))
	defer srv.Close()

	client, err := supabase.New(supabase.Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)
	repo := NewSupabaseNotificationRepository(client)
	assert.NoError(t, repo.Save(context.Background(), sample()))
}

func TestGormSaveIgnoresDuplicateEntry(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{SkipDefaultTransaction: true, Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `notifications`")).
		WillReturnError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	repo := NewGormNotificationRepository(db)
	assert.NoError(t, repo.Save(context.Background(), sample()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
