package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDoInjectsTraceContextAndRecordsStatus(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(tp.Tracer("test"), time.Second)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/rest/v1/wallets", nil)
	require.NoError(t, err)

	resp, err := client.Do(req, "supabase.select.wallets")
	require.NoError(t, err)
	resp.Body.Close()

	assert.NotEmpty(t, traceparent)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "supabase.select.wallets", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
