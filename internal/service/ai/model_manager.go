package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/skincheck-go/internal/constants"
	"github.com/kapu/skincheck-go/internal/util"
	"github.com/kapu/skincheck-go/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	statusCodePattern = regexp.MustCompile(`\b([45]\d{2})\b`)
	geminiCodePattern = regexp.MustCompile(`"code":\s*(\d{3})`)
)

// ModelManager routes prompts to Gemini with an OpenAI fallback, guarded by
// a rate limiter and a circuit breaker.
type ModelManager struct {
	primary  TextProvider
	fallback TextProvider
	limiter  *rate.Limiter
	breaker  *util.CircuitBreaker
	logger   *zap.Logger
}

type ModelManagerConfig struct {
	GeminiAPIKey       string
	OpenAIAPIKey       string
	DefaultGeminiModel string
	DefaultOpenAIModel string
	EnableFallback     bool
	RequestsPerSecond  float64
	Burst              int
}

// NewModelManager builds the Gemini primary and the optional OpenAI
// fallback. Without a Gemini key the OpenAI provider becomes the primary;
// with neither key an error is returned.
func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	var fallback TextProvider
	if cfg.EnableFallback || cfg.GeminiAPIKey == "" {
		if p := NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.DefaultOpenAIModel, logger); p != nil {
			fallback = p
		}
	}

	if cfg.GeminiAPIKey == "" {
		if fallback == nil {
			return nil, fmt.Errorf("no generative provider configured")
		}
		logger.Info("Gemini key missing, using OpenAI as primary")
		return NewModelManagerWithProviders(fallback, nil, newLimiter(cfg.RequestsPerSecond, cfg.Burst), logger), nil
	}

	gemini, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.DefaultGeminiModel, logger)
	if err != nil {
		return nil, err
	}

	if fallback != nil {
		logger.Info("OpenAI fallback enabled", zap.String("provider", fallback.Name()))
	} else {
		logger.Info("OpenAI fallback disabled")
	}

	return NewModelManagerWithProviders(gemini, fallback, newLimiter(cfg.RequestsPerSecond, cfg.Burst), logger), nil
}

// NewModelManagerWithProviders wires explicit providers. fallback and
// limiter may be nil.
func NewModelManagerWithProviders(primary, fallback TextProvider, limiter *rate.Limiter, logger *zap.Logger) *ModelManager {
	mm := &ModelManager{
		primary:  primary,
		fallback: fallback,
		limiter:  limiter,
		logger:   logger,
	}
	mm.breaker = util.NewCircuitBreaker(util.CircuitBreakerOptions{
		Name:                "generative",
		FailureThreshold:    constants.CircuitBreakerConfig.FailureThreshold,
		ResetTimeout:        constants.CircuitBreakerConfig.ResetTimeout,
		HealthCheckInterval: constants.CircuitBreakerConfig.HealthCheckInterval,
		HealthCheckTimeout:  constants.CircuitBreakerConfig.HealthCheckTimeout,
		HealthCheck:         mm.healthCheckPing,
	}, logger)
	return mm
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = constants.GenerationLimits.RequestsPerSecond
	}
	if burst <= 0 {
		burst = constants.GenerationLimits.Burst
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// GenerateText returns the trimmed completion for prompt. Safety rejections
// surface as GENERATIVE_REJECTED without trying the fallback; every other
// failure, including an empty answer, is GENERATIVE_UNAVAILABLE.
func (mm *ModelManager) GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error) {
	if mm.limiter != nil {
		if err := mm.limiter.Wait(ctx); err != nil {
			return "", nil, errors.NewGenerativeError(errors.CodeGenerativeUnavailable,
				"rate limiter wait aborted", "", err)
		}
	}

	if !mm.breaker.CanExecute() {
		status := mm.breaker.GetStatus()
		nextRetry := "알 수 없음"
		if status.NextRetryTime != nil {
			nextRetry = util.FormatKST(*status.NextRetryTime, "15:04")
		}
		mm.logger.Warn("Generative service unavailable (Circuit OPEN)",
			zap.Int("failure_count", status.FailureCount),
			zap.String("next_retry", nextRetry),
		)
		return "", nil, errors.NewGenerativeError(errors.CodeGenerativeUnavailable,
			"circuit open until "+nextRetry, "", nil)
	}

	result, err := mm.primary.Generate(ctx, prompt, preset, opts)
	metadata := &GenerateMetadata{Provider: mm.primary.Name(), Model: result.Model}
	if err == nil {
		mm.breaker.RecordSuccess()
		return mm.finish(result.Text, metadata)
	}
	if isRejection(err) {
		return "", nil, err
	}

	primaryErr := err
	if mm.fallback == nil {
		mm.recordFailure(primaryErr)
		return "", nil, errors.NewGenerativeError(errors.CodeGenerativeUnavailable,
			"generation failed", mm.primary.Name(), primaryErr)
	}

	result, err = mm.fallback.Generate(ctx, prompt, preset, opts)
	if err == nil {
		mm.breaker.RecordSuccess()
		return mm.finish(result.Text, &GenerateMetadata{
			Provider:     mm.fallback.Name(),
			Model:        result.Model,
			UsedFallback: true,
		})
	}
	if isRejection(err) {
		return "", nil, err
	}

	mm.recordFailure(primaryErr, err)
	return "", nil, errors.NewGenerativeError(errors.CodeGenerativeUnavailable,
		"generation failed", mm.fallback.Name(), err)
}

func (mm *ModelManager) finish(text string, metadata *GenerateMetadata) (string, *GenerateMetadata, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil, errors.NewGenerativeError(errors.CodeGenerativeUnavailable,
			"empty response", metadata.Provider, nil)
	}
	return trimmed, metadata, nil
}

func (mm *ModelManager) recordFailure(errs ...error) {
	serviceFailure := false
	rateLimited := false
	for _, err := range errs {
		serviceFailure = serviceFailure || isServiceFailure(err)
		rateLimited = rateLimited || isRateLimitError(err)
	}
	if !serviceFailure {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if rateLimited {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	mm.breaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing(ctx context.Context) bool {
	mm.logger.Info("Health Check: Testing generative services...")

	ok := mm.primary.Ping(ctx)
	if !ok && mm.fallback != nil {
		ok = mm.fallback.Ping(ctx)
	}

	mm.logger.Info("Health Check: Result", zap.Bool("healthy", ok))
	return ok
}

func (mm *ModelManager) GetCircuitStatus() util.CircuitBreakerStatus {
	return mm.breaker.GetStatus()
}

func (mm *ModelManager) ResetCircuit() {
	mm.breaker.Reset()
}

func isRejection(err error) bool {
	return errors.CodeOf(err) == errors.CodeGenerativeRejected
}

func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}
	if isRateLimitError(err) {
		return true
	}

	code := statusCode(msg)
	return code >= 500 && code < 600
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}
	return statusCode(msg) == 429
}

func statusCode(msg string) int {
	if m := geminiCodePattern.FindStringSubmatch(msg); len(m) > 1 {
		if code, err := strconv.Atoi(m[1]); err == nil {
			return code
		}
	}
	if m := statusCodePattern.FindStringSubmatch(msg); len(m) > 1 {
		if code, err := strconv.Atoi(m[1]); err == nil {
			return code
		}
	}
	return 0
}
