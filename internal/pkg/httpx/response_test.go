package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fundgate/internal/pkg/appctx"

	"github.com/stretchr/testify/assert"
)

var errConflict = errors.New("already processed")

func mapper(err error) int {
	if errors.Is(err, errConflict) {
		return http.StatusConflict
	}
	return 0
}

func TestFailMapsErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{appctx.ErrUnauthenticated, http.StatusUnauthorized, `{"error":"not authenticated"}`},
		{appctx.ErrForbidden, http.StatusForbidden, `{"error":"admin role required"}`},
		{errConflict, http.StatusConflict, `{"error":"already processed"}`},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err, mapper)
		assert.Equal(t, tc.status, rec.Code)
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
}
