package chi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	domrisk "github.com/kailas-cloud/heritage/internal/domain/risk"
	healthuc "github.com/kailas-cloud/heritage/internal/usecase/health"
)

type mockRisk struct {
	scoreFn func(ctx context.Context, text, language string) (domrisk.Result, error)
}

func (m *mockRisk) Score(ctx context.Context, text, language string) (domrisk.Result, error) {
	return m.scoreFn(ctx, text, language)
}

type mockItems struct {
	createFn func(ctx context.Context, d domitem.Draft) (domitem.Item, error)
	updateFn func(ctx context.Context, id string, d domitem.Draft) (domitem.Item, error)
	getFn    func(ctx context.Context, id string) (domitem.Item, error)
	listFn   func(ctx context.Context, f domitem.Filter) ([]domitem.Item, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockItems) Create(ctx context.Context, d domitem.Draft) (domitem.Item, error) {
	return m.createFn(ctx, d)
}

func (m *mockItems) Update(ctx context.Context, id string, d domitem.Draft) (domitem.Item, error) {
	return m.updateFn(ctx, id, d)
}

func (m *mockItems) Get(ctx context.Context, id string) (domitem.Item, error) {
	return m.getFn(ctx, id)
}

func (m *mockItems) List(ctx context.Context, f domitem.Filter) ([]domitem.Item, error) {
	return m.listFn(ctx, f)
}

func (m *mockItems) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

const testItemID = "01920000-0000-7000-8000-000000000001"

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func criticalResult() domrisk.Result {
	return domrisk.NewResult(0.82, domrisk.Critical, domrisk.Components{
		Length:   1,
		Language: 0.1,
		Digital:  domrisk.Reference{Score: 1, SourcesMatched: 0},
		Local:    1,
	})
}

func testItem(assessed bool) domitem.Item {
	d := domitem.Draft{
		Title:       "Kolam",
		Category:    "dance",
		Description: "masked dance drama",
		Tags:        []string{"coastal"},
		Language:    "sinhala",
	}
	r := domrisk.Result{}
	if assessed {
		r = criticalResult()
	}
	return domitem.Reconstruct(testItemID, d, testTime, testTime, r, []float32{0.1, 0.2})
}

func newTestRouter(t *testing.T, risk RiskScorer, items ItemService, health HealthReporter) http.Handler {
	t.Helper()
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	return NewRouter(NewServer(risk, items, health, nil), RouterOptions{})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
