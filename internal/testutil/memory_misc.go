package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AhmedTrying/malaysiasafd/internal/classifier"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
)

// MemoryFeedback is an in-memory feedback log
type MemoryFeedback struct {
	mu      sync.Mutex
	entries []models.Feedback
}

func (m *MemoryFeedback) Create(_ context.Context, fb *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fb.ID = uint(len(m.entries) + 1)
	fb.CreatedAt = time.Now().UTC()
	m.entries = append(m.entries, *fb)
	return nil
}

func (m *MemoryFeedback) List(_ context.Context) ([]models.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := slices.Clone(m.entries)
	slices.Reverse(out)
	return out, nil
}

// MemoryAudit is an in-memory audit log
type MemoryAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (m *MemoryAudit) Create(_ context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log.ID = uint(len(m.entries) + 1)
	log.CreatedAt = time.Now().UTC()
	m.entries = append(m.entries, *log)
	return nil
}

func (m *MemoryAudit) List(_ context.Context, filter repository.AuditFilter) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AuditLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		if filter.Action != "" && !strings.HasPrefix(e.Action, filter.Action) {
			continue
		}
		out = append(out, e)
	}
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Actions returns the recorded actions in order
func (m *MemoryAudit) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions := make([]string, len(m.entries))
	for i, e := range m.entries {
		actions[i] = e.Action
	}
	return actions
}

// StubClassifier returns a fixed verdict or error
type StubClassifier struct {
	Prediction *models.Prediction
	Err        error
	calls      atomic.Int64
}

// NewStubClassifier returns a classifier answering label with confidence
func NewStubClassifier(label models.CaseStatus, confidence float64) *StubClassifier {
	return &StubClassifier{Prediction: &models.Prediction{
		Label:      label,
		Confidence: confidence,
		RiskTier:   classifier.RiskTierFor(confidence),
	}}
}

func (s *StubClassifier) Classify(ctx context.Context, _ classifier.Request) (*models.Prediction, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	p := *s.Prediction
	return &p, nil
}

// Calls returns how many times Classify ran
func (s *StubClassifier) Calls() int {
	return int(s.calls.Load())
}
