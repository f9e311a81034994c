package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/caseid"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

var pendingIDPattern = regexp.MustCompile(`^#P20\d\d$`)

func TestSubmitScenarioA(t *testing.T) {
	env := newTestEnv(t)

	report := env.submit(t, scenarioInput())

	assert.Regexp(t, pendingIDPattern, report.CaseID)
	assert.Equal(t, "#P2000", report.CaseID)
	assert.Equal(t, 25000.0, report.AmountLost)
	assert.Equal(t, models.StatusPending, report.Status)
	assert.Equal(t, models.CaseScam, report.PredictedStatus)
	assert.Equal(t, 0.95, report.ConfidenceScore)
	assert.Equal(t, models.RiskHigh, report.RiskLevel)
	assert.False(t, report.LookupUnresolved)

	stored, err := env.reports.Pending.GetByCaseID(context.Background(), report.CaseID)
	require.NoError(t, err)
	require.NotNil(t, stored.ScamTypeName)
	require.NotNil(t, stored.StateName)
	assert.Equal(t, "Investment Scam", *stored.ScamTypeName)
	assert.Equal(t, "Selangor", *stored.StateName)
	assert.Equal(t, 25000.0, stored.AmountLost)
	require.NotNil(t, stored.SubmittedBy)
	assert.Equal(t, analystActor.UserID, *stored.SubmittedBy)

	assert.Equal(t, []string{"report.submit"}, env.audit.Actions())
}

func TestSubmitSequentialIDs(t *testing.T) {
	env := newTestEnv(t)

	first := env.submit(t, scenarioInput())
	second := env.submit(t, scenarioInput())

	assert.Equal(t, "#P2000", first.CaseID)
	assert.Equal(t, "#P2001", second.CaseID)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    SubmitInput
		field string
	}{
		{"empty summary", SubmitInput{Summary: "   ", AmountLost: 1, ScamType: "Phishing", State: "Johor"}, "summary"},
		{"negative amount", SubmitInput{Summary: "x", AmountLost: -1, ScamType: "Phishing", State: "Johor"}, "amountLost"},
		{"nan amount", SubmitInput{Summary: "x", AmountLost: math.NaN(), ScamType: "Phishing", State: "Johor"}, "amountLost"},
		{"missing scam type", SubmitInput{Summary: "x", AmountLost: 1, State: "Johor"}, "scamType"},
		{"missing state", SubmitInput{Summary: "x", AmountLost: 1, ScamType: "Phishing"}, "state"},
		{"amount beyond column precision", SubmitInput{Summary: "x", AmountLost: 1e15, ScamType: "Phishing", State: "Johor"}, "amountLost"},
		{"infinite amount", SubmitInput{Summary: "x", AmountLost: math.Inf(1), ScamType: "Phishing", State: "Johor"}, "amountLost"},
		{"long scam type", SubmitInput{Summary: "x", AmountLost: 1, ScamType: strings.Repeat("p", 101), State: "Johor"}, "scamType"},
		{"long state", SubmitInput{Summary: "x", AmountLost: 1, ScamType: "Phishing", State: strings.Repeat("s", 150)}, "state"},
		{"long summary", SubmitInput{Summary: strings.Repeat("a", 10001), AmountLost: 1, ScamType: "Phishing", State: "Johor"}, "summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.submission.Submit(context.Background(), analystActor, tt.in)

			var ve *apperrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Zero(t, env.classifier.Calls(), "classifier must not be called for invalid input")
			assert.Zero(t, env.reports.PendingCount())
		})
	}
}

func TestPredictRejectsOversizedInput(t *testing.T) {
	env := newTestEnv(t)
	in := scenarioInput()
	in.State = strings.Repeat("Sabah", 30)

	_, err := env.submission.Predict(context.Background(), in)

	assert.True(t, apperrors.IsValidation(err), "got %v", err)
	assert.Zero(t, env.classifier.Calls())
}

func TestSubmitAcceptsLargestStorableAmount(t *testing.T) {
	env := newTestEnv(t)
	in := scenarioInput()
	in.AmountLost = 999999999999.99

	_, err := env.submission.Submit(context.Background(), analystActor, in)

	require.NoError(t, err)
	assert.Equal(t, 1, env.classifier.Calls())
}

func TestSubmitClassificationFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.classifier.Err = apperrors.Classification("prediction service timed out", context.DeadlineExceeded)

	_, err := env.submission.Submit(context.Background(), analystActor, scenarioInput())

	require.Error(t, err)
	assert.True(t, apperrors.IsClassification(err))
	assert.Zero(t, env.reports.PendingCount())
	assert.Empty(t, env.audit.Actions())
}

func TestSubmitUnknownLookupIsFlagged(t *testing.T) {
	env := newTestEnv(t)

	in := scenarioInput()
	in.ScamType = "Crypto Rug Pull"
	report := env.submit(t, in)

	assert.True(t, report.LookupUnresolved)
	assert.Nil(t, report.ScamTypeID)
	require.NotNil(t, report.StateID)
	assert.Equal(t, "Crypto Rug Pull", report.ScamTypeInput)
}

func TestSubmitLookupIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)

	in := scenarioInput()
	in.ScamType = "investment scam"
	in.State = "SGR"
	report := env.submit(t, in)

	assert.False(t, report.LookupUnresolved)
	require.NotNil(t, report.ScamTypeID)
	assert.Equal(t, env.lookups.ScamTypeID("Investment Scam"), *report.ScamTypeID)
	assert.Equal(t, env.lookups.StateID("Selangor"), *report.StateID)
}

func TestPredictDoesNotPersist(t *testing.T) {
	env := newTestEnv(t)

	prediction, err := env.submission.Predict(context.Background(), scenarioInput())
	require.NoError(t, err)

	assert.Equal(t, models.CaseScam, prediction.Label)
	assert.Equal(t, 1, env.classifier.Calls())
	assert.Zero(t, env.reports.PendingCount())
}

// barrierAllocator makes n callers observe the same latest id before any of
// them inserts, reproducing the read-then-increment race on demand.
type barrierAllocator struct {
	inner caseid.Allocator
	wg    sync.WaitGroup
	once  sync.Once
	n     int
	mu    sync.Mutex
	seen  int
}

func newBarrierAllocator(inner caseid.Allocator, n int) *barrierAllocator {
	b := &barrierAllocator{inner: inner, n: n}
	b.wg.Add(n)
	return b
}

func (b *barrierAllocator) Next(ctx context.Context) (string, error) {
	id, err := b.inner.Next(ctx)

	b.mu.Lock()
	first := b.seen < b.n
	b.seen++
	b.mu.Unlock()

	if first {
		b.wg.Done()
		b.wg.Wait()
	}
	return id, err
}

func TestConcurrentSubmissionsGetUniqueIDs(t *testing.T) {
	for _, strategy := range []string{"latest", "counter"} {
		t.Run(strategy, func(t *testing.T) {
			env := newTestEnv(t)

			var inner caseid.Allocator = caseid.NewCounterAllocator(caseid.Pending)
			if strategy == "latest" {
				inner = caseid.NewLatestAllocator(caseid.Pending, env.reports.Pending.LatestCaseID)
			}
			env.submission.allocator = newBarrierAllocator(inner, 2)

			ids := make([]string, 2)
			var g errgroup.Group
			for i := range ids {
				g.Go(func() error {
					report, err := env.submission.Submit(context.Background(), analystActor, scenarioInput())
					if err != nil {
						return err
					}
					ids[i] = report.CaseID
					return nil
				})
			}
			require.NoError(t, g.Wait())

			assert.NotEqual(t, ids[0], ids[1])
			assert.ElementsMatch(t, []string{"#P2000", "#P2001"}, ids)
			assert.Equal(t, 2, env.reports.PendingCount())
		})
	}
}

type fixedAllocator string

func (f fixedAllocator) Next(context.Context) (string, error) { return string(f), nil }

func TestSubmitGivesUpAfterMaxAttempts(t *testing.T) {
	env := newTestEnv(t)
	env.submission.allocator = fixedAllocator("#P2000")

	env.submit(t, scenarioInput())
	_, err := env.submission.Submit(context.Background(), analystActor, scenarioInput())

	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	assert.Equal(t, 1, env.reports.PendingCount())
}

type failingAllocator struct{}

func (failingAllocator) Next(context.Context) (string, error) {
	return "", errors.New("sequence unavailable")
}

func TestSubmitAllocatorFailure(t *testing.T) {
	env := newTestEnv(t)
	env.submission.allocator = failingAllocator{}

	_, err := env.submission.Submit(context.Background(), analystActor, scenarioInput())

	assert.True(t, apperrors.IsPersistence(err))
	assert.Zero(t, env.reports.PendingCount())
}
