package primary

import "context"

// DashboardService defines the primary port for summary counts.
type DashboardService interface {
	Metrics(ctx context.Context) (*DashboardMetrics, error)
}

// DashboardMetrics holds ledger totals.
type DashboardMetrics struct {
	TotalCases          int `json:"totalCases"`
	PendingCases        int `json:"pendingCases"`
	DisposedCases       int `json:"disposedCases"`
	PropertiesInCustody int `json:"propertiesInCustody"`
	PropertiesDisposed  int `json:"propertiesDisposed"`
}
