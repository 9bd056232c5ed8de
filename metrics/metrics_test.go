package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/team-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector(t *testing.T) {
	c := NewCollector()

	c.RecordTransition(models.GameStatusScheduled, models.GameStatusPlayed)
	c.RecordTransition(models.GameStatusScheduled, models.GameStatusPlayed)
	c.RecordDraftWrite(models.DraftReport)
	c.RecordJobEnqueued(models.JobTypeRecalcMinutes)
	c.RecordJobProcessed(models.JobTypeRecalcMinutes, models.JobStatusFailed, 250*time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, `game_status_transitions_total{from="scheduled",to="played"} 2`)
	assert.Contains(t, body, `game_draft_writes_total{slot="report"} 1`)
	assert.Contains(t, body, `jobs_enqueued_total{job_type="recalc-minutes"} 1`)
	assert.Contains(t, body, `jobs_processed_total{job_type="recalc-minutes",status="failed"} 1`)
	assert.Contains(t, body, `job_processing_seconds_count{job_type="recalc-minutes"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestCollectors_AreIndependent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.RecordJobEnqueued("recalc-minutes")

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		assert.NotEqual(t, "jobs_enqueued_total", mf.GetName())
	}
}
