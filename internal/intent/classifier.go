package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
	"github.com/shreya-shukla01/NSUTHackathon/internal/metrics"
)

const (
	DefaultTimeout = 12 * time.Second
	retryBackoff   = 250 * time.Millisecond
)

// Reasoner is the external reasoning service. Errors exposing a
// Transient() bool method that reports true are retried once.
type Reasoner interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Classifier struct {
	reasoner Reasoner
	timeout  time.Duration
	retry    bool
	backoff  time.Duration
	logger   *slog.Logger
}

type Option func(*Classifier)

// WithTimeout bounds the whole reasoning call, retry included.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithRetry(enabled bool) Option {
	return func(c *Classifier) { c.retry = enabled }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

// NewClassifier returns a classifier backed by r. A nil r makes every call
// take the heuristic path.
func NewClassifier(r Reasoner, opts ...Option) *Classifier {
	c := &Classifier{
		reasoner: r,
		timeout:  DefaultTimeout,
		retry:    true,
		backoff:  retryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDefault(c.logger)
	return c
}

// Classify always returns a usable classification. Any failure of the
// reasoning service, including malformed or out-of-enum replies, yields
// Estimate(reading.Vibration, reading.SoundLevel).
func (c *Classifier) Classify(ctx context.Context, reading domain.SensorReading) (result domain.IntentClassification) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("intent classification panicked", "panic", fmt.Sprint(p))
			result = Estimate(reading.Vibration, reading.SoundLevel)
		}
		metrics.Classifications.WithLabelValues(string(result.Source)).Inc()
	}()

	if c.reasoner == nil {
		return Estimate(reading.Vibration, reading.SoundLevel)
	}

	out, err := c.reason(ctx, reading)
	if err != nil {
		c.logger.Warn("intent classification fell back to heuristic",
			"error", err,
			"vibration", reading.Vibration,
			"sound_level", reading.SoundLevel,
		)
		return Estimate(reading.Vibration, reading.SoundLevel)
	}

	c.logger.Debug("intent classified",
		"intent", out.Intent,
		"risk_score", out.RiskScore,
	)
	return out
}

func (c *Classifier) reason(ctx context.Context, reading domain.SensorReading) (domain.IntentClassification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.ReasoningLatency.Observe(time.Since(start).Seconds()) }()

	user := buildPrompt(reading)

	raw, err := c.reasoner.Complete(ctx, systemPrompt, user)
	if err != nil && c.retry && isTransient(err) && ctx.Err() == nil {
		c.logger.Info("retrying reasoning call", "error", err)
		select {
		case <-time.After(c.backoff):
			raw, err = c.reasoner.Complete(ctx, systemPrompt, user)
		case <-ctx.Done():
			return domain.IntentClassification{}, fmt.Errorf("reasoning retry: %w", ctx.Err())
		}
	}
	if err != nil {
		return domain.IntentClassification{}, err
	}

	return parseReply(raw)
}

func isTransient(err error) bool {
	var t interface{ Transient() bool }
	return errors.As(err, &t) && t.Transient()
}

const systemPrompt = "You are a railway safety analyst. Classify the intent behind trackside sensor anomalies. " +
	"Reply with a single JSON object and nothing else."

func buildPrompt(r domain.SensorReading) string {
	var b strings.Builder
	b.WriteString("Analyze this railway track sensor data:\n")
	fmt.Fprintf(&b, "- Vibration: %gg (normal: 2-5g)\n", r.Vibration)
	fmt.Fprintf(&b, "- Sound Level: %gdB (normal: 40-70dB)\n", r.SoundLevel)
	fmt.Fprintf(&b, "- Temperature: %g°C (normal: 20-35°C)\n", r.Temperature)
	fmt.Fprintf(&b, "- Visual Motion: %t\n\n", r.VisualMotion)
	b.WriteString("Classify the intent as exactly one of: Normal, Maintenance, Accidental, Sabotage.\n")
	b.WriteString("Give risk_score (0-100), confidence (0-100) and a short recommendation.\n")
	b.WriteString(`Respond ONLY with JSON: {"intent": "...", "risk_score": 0, "confidence": 0, "recommendation": "..."}`)
	return b.String()
}

type reply struct {
	Intent         *string  `json:"intent"`
	RiskScore      *float64 `json:"risk_score"`
	Confidence     *float64 `json:"confidence"`
	Recommendation *string  `json:"recommendation"`
}

// parseReply accepts exactly one JSON object with all four fields and no
// others.
func parseReply(raw string) (domain.IntentClassification, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var rep reply
	if err := dec.Decode(&rep); err != nil {
		return domain.IntentClassification{}, fmt.Errorf("decode reply: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return domain.IntentClassification{}, errors.New("decode reply: trailing data after object")
	}

	var missing []string
	if rep.Intent == nil {
		missing = append(missing, "intent")
	}
	if rep.RiskScore == nil {
		missing = append(missing, "risk_score")
	}
	if rep.Confidence == nil {
		missing = append(missing, "confidence")
	}
	if rep.Recommendation == nil {
		missing = append(missing, "recommendation")
	}
	if len(missing) > 0 {
		return domain.IntentClassification{}, fmt.Errorf("reply missing %s", strings.Join(missing, ", "))
	}

	in, err := domain.ParseIntent(*rep.Intent)
	if err != nil {
		return domain.IntentClassification{}, err
	}

	return domain.IntentClassification{
		Intent:         in,
		RiskScore:      domain.ClampScore(*rep.RiskScore),
		Confidence:     domain.ClampScore(*rep.Confidence),
		Recommendation: *rep.Recommendation,
		Source:         domain.SourceReasoning,
	}, nil
}
