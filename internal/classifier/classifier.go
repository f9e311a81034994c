// Package classifier talks to the external scam prediction service.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/config"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

// Risk tier thresholds, inclusive lower bounds
const (
	HighRiskThreshold   = 0.8
	MediumRiskThreshold = 0.6
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// Request is the payload sent to the prediction service
type Request struct {
	Summary    string  `json:"summary"`
	AmountLost float64 `json:"amountLost"`
	ScamType   string  `json:"scamType"`
	State      string  `json:"state"`
}

type response struct {
	Prediction string   `json:"prediction"`
	Confidence *float64 `json:"confidence"`
	RiskLevel  string   `json:"risk_level"`
}

// Client calls the prediction service over HTTP
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new classifier client
func NewClient(cfg *config.ClassifierConfig) *Client {
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Classify scores a report. Any failure to obtain a usable verdict is
// returned as *apperrors.ClassificationError; there is no fallback verdict.
func (c *Client) Classify(ctx context.Context, req Request) (*models.Prediction, error) {
	if strings.TrimSpace(req.Summary) == "" {
		return nil, apperrors.Validation("summary", "must not be empty")
	}
	if req.AmountLost < 0 || math.IsNaN(req.AmountLost) || math.IsInf(req.AmountLost, 0) {
		return nil, apperrors.Validation("amountLost", "must be a non-negative number")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Classification("failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Classification("failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		reason := "prediction service unreachable"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			reason = "prediction service timed out"
		}
		return nil, apperrors.Classification(reason, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Failed to close classifier response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Classification("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Classification(
			fmt.Sprintf("prediction service returned status %d", resp.StatusCode),
			errors.New(truncate(string(raw), 200)),
		)
	}

	prediction, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	slog.Debug("Classified report",
		"label", prediction.Label,
		"confidence", prediction.Confidence,
		"risk_level", prediction.RiskTier,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return prediction, nil
}

func parseResponse(raw []byte) (*models.Prediction, error) {
	var body response
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperrors.Classification("malformed response body", err)
	}

	label, err := NormalizeLabel(body.Prediction)
	if err != nil {
		return nil, apperrors.Classification("malformed response body", err)
	}

	if body.Confidence == nil {
		return nil, apperrors.Classification("malformed response body", errors.New("missing confidence"))
	}
	confidence := *body.Confidence
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return nil, apperrors.Classification("malformed response body",
			fmt.Errorf("confidence %v outside [0,1]", confidence))
	}

	tier := RiskTierFor(confidence)
	if body.RiskLevel != "" && !strings.EqualFold(body.RiskLevel, string(tier)) {
		slog.Debug("Ignoring remote risk level", "remote", body.RiskLevel, "local", tier)
	}

	return &models.Prediction{
		Label:      label,
		Confidence: confidence,
		RiskTier:   tier,
	}, nil
}

// NormalizeLabel maps the service's label vocabulary onto case statuses
func NormalizeLabel(label string) (models.CaseStatus, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "scam", "fraud":
		return models.CaseScam, nil
	case "non-scam", "non_scam", "not scam", "not-scam", "legitimate", "legit":
		return models.CaseLegitimate, nil
	}
	return "", fmt.Errorf("unknown prediction label %q", label)
}

// RiskTierFor buckets a confidence score: High >= 0.8, Medium >= 0.6, else Low
func RiskTierFor(confidence float64) models.RiskTier {
	switch {
	case confidence >= HighRiskThreshold:
		return models.RiskHigh
	case confidence >= MediumRiskThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
