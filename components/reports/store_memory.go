package reports

import (
	"context"
	"sort"
	"sync"
)

// MemoryReportStore is a thread-safe in-memory ReportStore. It backs tests,
// the CLI, and single-process deployments; applications swap in their own
// persistence by implementing ReportStore.
type MemoryReportStore struct {
	mu      sync.RWMutex
	records map[string]ReportRecord
}

// NewMemoryReportStore builds an empty store.
func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{records: map[string]ReportRecord{}}
}

// CreateReport stores a new record.
func (s *MemoryReportStore) CreateReport(ctx context.Context, record ReportRecord) error {
	if record.ID == "" {
		return errReportID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return ErrReportExists
	}
	s.records[record.ID] = cloneRecord(record)
	return nil
}

// GetReport fetches a record by id.
func (s *MemoryReportStore) GetReport(ctx context.Context, reportID string) (ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[reportID]
	if !ok {
		return ReportRecord{}, ErrReportNotFound
	}
	return cloneRecord(record), nil
}

// GetReportByShareToken fetches a record by its share token.
func (s *MemoryReportStore) GetReportByShareToken(ctx context.Context, token string) (ReportRecord, error) {
	if token == "" {
		return ReportRecord{}, ErrReportNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.ShareToken == token {
			return cloneRecord(record), nil
		}
	}
	return ReportRecord{}, ErrReportNotFound
}

// UpdateReport replaces a stored record.
func (s *MemoryReportStore) UpdateReport(ctx context.Context, record ReportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; !ok {
		return ErrReportNotFound
	}
	s.records[record.ID] = cloneRecord(record)
	return nil
}

// DeleteReport removes a record.
func (s *MemoryReportStore) DeleteReport(ctx context.Context, reportID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[reportID]; !ok {
		return ErrReportNotFound
	}
	delete(s.records, reportID)
	return nil
}

// ListReports returns records newest first.
func (s *MemoryReportStore) ListReports(ctx context.Context, input ListReportsInput) ([]ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ReportRecord, 0, len(s.records))
	for _, record := range s.records {
		if record.Archived && !input.IncludeArchived {
			continue
		}
		out = append(out, cloneRecord(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// cloneRecord copies the mutable parts so callers never alias stored state.
func cloneRecord(record ReportRecord) ReportRecord {
	out := record
	if record.TemplateFile != nil {
		out.TemplateFile = append([]byte(nil), record.TemplateFile...)
	}
	if record.Placeholders != nil {
		out.Placeholders = append([]Placeholder(nil), record.Placeholders...)
	}
	out.Mappings = record.Mappings.Clone()
	return out
}
