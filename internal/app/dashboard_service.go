package app

import (
	"context"

	"github.com/example/malkhana/internal/core/casefile"
	"github.com/example/malkhana/internal/core/custody"
	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/ports/secondary"
)

// DashboardServiceImpl implements the DashboardService interface.
type DashboardServiceImpl struct {
	store secondary.Store
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(store secondary.Store) *DashboardServiceImpl {
	return &DashboardServiceImpl{store: store}
}

// Metrics returns case and property totals.
func (s *DashboardServiceImpl) Metrics(ctx context.Context) (*primary.DashboardMetrics, error) {
	cases, err := s.store.Cases().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	properties, err := s.store.Properties().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	m := &primary.DashboardMetrics{
		PendingCases:        cases[string(casefile.StatusPending)],
		DisposedCases:       cases[string(casefile.StatusDisposed)],
		PropertiesInCustody: properties[string(custody.StatusInCustody)],
		PropertiesDisposed:  properties[string(custody.StatusDisposed)],
	}
	m.TotalCases = m.PendingCases + m.DisposedCases
	return m, nil
}
