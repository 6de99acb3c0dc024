package memory

import (
	"sync"

	"github.com/salesmind/engine/internal/domain"
)

type ReportStore struct {
	mu      sync.RWMutex
	reports map[domain.SessionID]*domain.Report
}

func NewReportStore() *ReportStore {
	return &ReportStore{
		reports: make(map[domain.SessionID]*domain.Report),
	}
}

func (s *ReportStore) CreateReport(report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.SessionID]; exists {
		return domain.ErrReportExists
	}

	copied := *report
	s.reports[report.SessionID] = &copied
	return nil
}

func (s *ReportStore) GetReportBySession(sessionID domain.SessionID) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[sessionID]
	if !ok {
		return nil, domain.ErrReportNotFound
	}

	copied := *report
	return &copied, nil
}
