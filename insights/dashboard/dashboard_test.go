package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theimaginaryfoundation/audience-pulse/insights/metrics"
	"github.com/theimaginaryfoundation/audience-pulse/insights/stage"
)

const analyzed = `[
	{"post_id":"1","comment":"Loved it","analysis":{"sentiment":{"overall_tone":"Positive"},"themes_and_topics":["Plot","Music"],"actionable_insights":["Release the soundtrack"]}},
	{"post_id":"2","comment":"رائع","analysis":{"sentiment":{"overall_tone":"Positive"},"actionable_insights":["Release the soundtrack"]},"language":"ar"}
]`

func newTestRouter(t *testing.T, files map[string]string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	l := stage.Layout{BaseDir: dir}
	for name, data := range files {
		require.NoError(t, os.WriteFile(l.Path(name), []byte(data), 0o644))
	}
	return NewRouter(NewHandler(l, nil), metrics.NewCollector())
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, nil)
	w := get(r, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDashboard_NotFoundWithoutResults(t *testing.T) {
	r := newTestRouter(t, nil)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/dashboard").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/export/comments/csv").Code)
}

func TestDashboard_ComputesKPIWhenMissing(t *testing.T) {
	r := newTestRouter(t, map[string]string{
		stage.AnalyzedJSONFile: analyzed,
		stage.SummaryFile:      "Audiences are delighted.\n",
	})
	w := get(r, "/api/dashboard")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		KPI              map[string]any   `json:"kpi"`
		Comments         []map[string]any `json:"comments"`
		ExecutiveSummary string           `json:"executiveSummary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body.KPI["Total Comments Analyzed"])
	assert.Len(t, body.Comments, 2)
	assert.Equal(t, "Audiences are delighted.", body.ExecutiveSummary)
	assert.Contains(t, w.Body.String(), `"Top Themes & Topics":`)
	assert.NotContains(t, w.Body.String(), `\u0026`)
}

func TestExports(t *testing.T) {
	r := newTestRouter(t, map[string]string{stage.AnalyzedJSONFile: analyzed})

	w := get(r, "/api/export/insights/csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Insight,Status\nRelease the soundtrack,Pending\n", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), stage.InsightsCSVFile)

	w = get(r, "/api/export/insights/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"insight":"Release the soundtrack","status":"Pending"}]`, w.Body.String())

	w = get(r, "/api/export/comments/csv")
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1,Loved it,Positive,Plot; Music,en", lines[1])
	assert.Equal(t, "2,رائع,Positive,,ar", lines[2])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)
	_ = get(r, "/healthz")
	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `audience_pulse_http_requests_total{endpoint="/healthz",method="GET",status="200"} 1`)
}
