package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Patch("/api/appointments/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("PATCH", "/api/appointments/{id}/cancel", "404"))
	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/api/appointments/"+id+"/cancel", nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("PATCH", "/api/appointments/{id}/cancel", "404"))
	assert.Equal(t, 3.0, after-before)
}

func TestBusinessCounters(t *testing.T) {
	before := testutil.ToFloat64(appointmentOps.WithLabelValues("book", "conflict"))
	RecordAppointment("book", "conflict")
	assert.Equal(t, 1.0, testutil.ToFloat64(appointmentOps.WithLabelValues("book", "conflict"))-before)

	before = testutil.ToFloat64(medicationLogs.WithLabelValues("duplicate"))
	RecordMedicationLog("duplicate")
	assert.Equal(t, 1.0, testutil.ToFloat64(medicationLogs.WithLabelValues("duplicate"))-before)

	RecordHealthScore(94)
	RecordInsightFallback("medications")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "health_score_bucket"))
	assert.True(t, strings.Contains(body, `insight_fallbacks_total{input="medications"}`))
}
