package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/infra/metrics"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)
	gt.V(t, w.Code).Equal(http.StatusOK)

	body, err := io.ReadAll(w.Body)
	gt.NoError(t, err)
	return string(body)
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	m.RegisterInFlight(func() int64 { return 2 })

	m.ObserveWebhookEvent(model.EventTypePullRequest, true)
	m.ObserveWebhookEvent(model.EventTypePullRequest, true)
	m.ObserveWebhookEvent(model.EventTypePing, false)
	m.ObserveCommentAction(model.CommentCreated)
	m.ObserveCommentAction(model.CommentUnchanged)

	out := scrape(t, m)
	gt.String(t, out).Contains(`themepreview_webhook_events_total{supported="true",type="pull_request"} 2`)
	gt.String(t, out).Contains(`themepreview_webhook_events_total{supported="false",type="ping"} 1`)
	gt.String(t, out).Contains(`themepreview_comment_actions_total{action="created"} 1`)
	gt.String(t, out).Contains(`themepreview_comment_actions_total{action="unchanged"} 1`)
	gt.String(t, out).Contains(`themepreview_dispatch_in_flight 2`)
	gt.String(t, out).Contains("go_goroutines")
}
