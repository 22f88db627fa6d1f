package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudboard/cloudboard/internal/reporting"
)

// reportTimeout bounds each report request. Cost Explorer and the listing
// APIs are slow but not minutes-slow; past this the client has moved on.
const reportTimeout = 30 * time.Second

// CostReporter produces the monthly spend series.
type CostReporter interface {
	MonthlyCosts(ctx context.Context) ([]reporting.MonthlyCost, error)
}

// ResourceReporter tallies deployed resources.
type ResourceReporter interface {
	Counts(ctx context.Context) (reporting.ResourceCounts, error)
}

// ReportHandlers provides HTTP handlers for dashboard reports. All routes
// sit behind the admin middleware.
type ReportHandlers struct {
	Costs     CostReporter
	Resources ResourceReporter
}

// MonthlyCosts handles GET /api/reports/costs.
func (h *ReportHandlers) MonthlyCosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	costs, err := h.Costs.MonthlyCosts(ctx)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"costs": costs})
}

// ResourceCounts handles GET /api/reports/resources.
func (h *ReportHandlers) ResourceCounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	counts, err := h.Resources.Counts(ctx)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, counts)
}
