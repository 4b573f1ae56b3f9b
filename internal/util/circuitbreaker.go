package util

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"    // 정상 작동
	CircuitStateOpen     CircuitState = "OPEN"      // 서비스 차단
	CircuitStateHalfOpen CircuitState = "HALF_OPEN" // 복구 시도 중
)

func (s CircuitState) String() string {
	return string(s)
}

// HealthCheckFunction reports whether the guarded service answers again.
type HealthCheckFunction func(ctx context.Context) bool

// CircuitBreakerOptions configures a CircuitBreaker.
type CircuitBreakerOptions struct {
	Name                string
	FailureThreshold    int
	ResetTimeout        time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
	HealthCheck         HealthCheckFunction
}

// CircuitBreaker stops calls to a failing collaborator until it recovers.
type CircuitBreaker struct {
	opts                CircuitBreakerOptions
	state               CircuitState
	failureCount        int
	nextRetryTime       time.Time
	nextHealthCheckTime time.Time
	isHealthChecking    bool
	logger              *zap.Logger
	mu                  sync.RWMutex
}

func NewCircuitBreaker(opts CircuitBreakerOptions, logger *zap.Logger) *CircuitBreaker {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 1
	}
	if opts.HealthCheckTimeout <= 0 {
		opts.HealthCheckTimeout = 10 * time.Second
	}
	return &CircuitBreaker{
		opts:   opts,
		state:  CircuitStateClosed,
		logger: logger.With(zap.String("breaker", opts.Name)),
	}
}

// GetState returns the current circuit state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateOpen {
		now := time.Now()

		if cb.opts.HealthCheck != nil && now.After(cb.nextHealthCheckTime) && !cb.isHealthChecking {
			cb.isHealthChecking = true
			go cb.runHealthCheck()
		} else if cb.opts.HealthCheck == nil && now.After(cb.nextRetryTime) {
			// Health Check가 없으면 시간 기반 복구
			cb.transitionTo(CircuitStateHalfOpen)
		}
	}

	return cb.state
}

// CanExecute checks if requests can be executed
func (cb *CircuitBreaker) CanExecute() bool {
	return cb.GetState() != CircuitStateOpen
}

// RecordSuccess records a successful request
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateHalfOpen {
		cb.logger.Info("Circuit Breaker: Service recovered, transitioning to CLOSED")
		cb.failureCount = 0
		cb.transitionTo(CircuitStateClosed)
	} else if cb.state == CircuitStateClosed && cb.failureCount > 0 {
		cb.failureCount = 0
	}
}

// RecordFailure records a failed request. customTimeout overrides the reset
// timeout when positive.
func (cb *CircuitBreaker) RecordFailure(customTimeout time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	timeout := cb.opts.ResetTimeout
	if customTimeout > 0 {
		timeout = customTimeout
	}

	cb.logger.Warn("Circuit Breaker: Failure recorded",
		zap.Int("count", cb.failureCount),
		zap.Int("threshold", cb.opts.FailureThreshold),
		zap.Duration("timeout", timeout),
	)

	if cb.state == CircuitStateHalfOpen || cb.failureCount >= cb.opts.FailureThreshold {
		cb.nextRetryTime = time.Now().Add(timeout)
		if cb.opts.HealthCheck != nil {
			cb.nextHealthCheckTime = time.Now().Add(cb.opts.HealthCheckInterval)
		}
		cb.transitionTo(CircuitStateOpen)
	}
}

func (cb *CircuitBreaker) runHealthCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), cb.opts.HealthCheckTimeout)
	defer cancel()

	cb.logger.Info("Circuit Breaker: Running health check...")
	isHealthy := cb.opts.HealthCheck(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.isHealthChecking = false

	if isHealthy {
		cb.logger.Info("Circuit Breaker: Health check PASSED → transitioning to HALF_OPEN")
		cb.transitionTo(CircuitStateHalfOpen)
	} else {
		cb.logger.Warn("Circuit Breaker: Health check FAILED → delaying next check")
		cb.nextHealthCheckTime = time.Now().Add(cb.opts.HealthCheckInterval)
	}
}

// transitionTo must be called with the lock held.
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState

	nextRetry := "n/a"
	if newState == CircuitStateOpen {
		nextRetry = cb.nextRetryTime.Format(time.RFC3339)
	}

	cb.logger.Info("Circuit Breaker: State transition",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
		zap.String("next_retry", nextRetry),
	)
}

// Reset manually resets the circuit breaker
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = CircuitStateClosed
	cb.failureCount = 0
	cb.nextRetryTime = time.Time{}
}

// GetStatus returns the current status
func (cb *CircuitBreaker) GetStatus() CircuitBreakerStatus {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	status := CircuitBreakerStatus{
		State:        cb.state,
		FailureCount: cb.failureCount,
	}

	if cb.state == CircuitStateOpen {
		next := cb.nextRetryTime
		status.NextRetryTime = &next
	}

	return status
}

// CircuitBreakerStatus represents the circuit breaker status
type CircuitBreakerStatus struct {
	State         CircuitState
	FailureCount  int
	NextRetryTime *time.Time
}
