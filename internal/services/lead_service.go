package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dealersite/internal/domain"
	applog "dealersite/internal/log"
	"dealersite/internal/metrics"
	"dealersite/internal/repos"
)

type LeadService struct {
	Leads *repos.LeadRepo
}

func NewLeadService(r *repos.LeadRepo) *LeadService { return &LeadService{Leads: r} }

// Log records a lead. It is best-effort: a store failure is logged and
// counted, and the caller carries on as if it succeeded.
func (s *LeadService) Log(ctx context.Context, carID, leadType string) bool {
	l := domain.LeadLog{
		ID:    uuid.NewString(),
		CarID: strings.TrimSpace(carID),
		Type:  normalizeLeadType(leadType),
	}
	if err := s.Leads.Create(ctx, l); err != nil {
		metrics.RecordLead(l.Type, false)
		applog.Error(nil, "lead.store_failed", err, map[string]any{"type": l.Type, "car_id": l.CarID})
		return false
	}
	metrics.RecordLead(l.Type, true)
	return true
}

func normalizeLeadType(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" {
		return "UNKNOWN"
	}
	if len(t) > 64 {
		t = t[:64]
	}
	return t
}

type LeadStats struct {
	Total   int
	ByType  []repos.LeadTypeCount
	TopCars []repos.LeadCarCount
	Latest  []domain.LeadLog
}

func (s *LeadService) Stats() (LeadStats, error) {
	var st LeadStats
	var err error
	if st.Total, err = s.Leads.Total(); err != nil {
		return st, fmt.Errorf("lead stats: %w", err)
	}
	if st.ByType, err = s.Leads.CountByType(); err != nil {
		return st, fmt.Errorf("lead stats: %w", err)
	}
	if st.TopCars, err = s.Leads.TopCars(5); err != nil {
		return st, fmt.Errorf("lead stats: %w", err)
	}
	if st.Latest, err = s.Leads.Latest(20); err != nil {
		return st, fmt.Errorf("lead stats: %w", err)
	}
	return st, nil
}
