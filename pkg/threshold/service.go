package threshold

import (
	"context"
	"fmt"

	"github.com/freelanceos/freelanceos/internal/utils"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Report struct {
	Year     int
	Snapshot Snapshot
	Evaluation
}

type Service interface {
	// Current evaluates the revenue paid in year. A zero year means the current one.
	Current(ctx context.Context, year int) (Report, error)
}

type RevenueReader interface {
	PaidRevenue(ctx context.Context, year int) (decimal.Decimal, error)
}

type ServiceImpl struct {
	revenue RevenueReader
	caps    Caps
	clock   utils.Clock
}

func NewService(revenue RevenueReader, caps Caps, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{revenue: revenue, caps: caps, clock: clock}
}

func (s *ServiceImpl) Current(ctx context.Context, year int) (Report, error) {
	if year == 0 {
		year = s.clock.Now().Year()
	}
	revenue, err := s.revenue.PaidRevenue(ctx, year)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read revenue for %d: %w", year, err)
	}
	snapshot := Snapshot{AnnualRevenue: revenue, Caps: s.caps}
	evaluation := Evaluate(snapshot)
	if evaluation.Alert != nil {
		log.Debugf("revenue %s in %d raised %s alert %s", revenue, year, evaluation.Alert.Severity, evaluation.Alert.Kind)
	}
	return Report{Year: year, Snapshot: snapshot, Evaluation: evaluation}, nil
}
