package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/kapu/skincheck-go/internal/util"
	apperrors "github.com/kapu/skincheck-go/pkg/errors"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name  string
	text  string
	err   error
	calls atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, _ string, _ ModelPreset, _ *GenerateOptions) (ProviderResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return ProviderResult{}, f.err
	}
	return ProviderResult{Text: f.text, Model: f.name + "-model"}, nil
}

func (f *fakeProvider) Ping(context.Context) bool { return f.err == nil }

func TestGenerateTextUsesPrimary(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", text: "  보습  "}
	fallback := &fakeProvider{name: "OpenAI", text: "unused"}
	mm := NewModelManagerWithProviders(primary, fallback, nil, zap.NewNop())

	text, meta, err := mm.GenerateText(context.Background(), "prompt", PresetPrecise, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "보습" {
		t.Fatalf("text = %q", text)
	}
	if meta.Provider != "Gemini" || meta.UsedFallback {
		t.Fatalf("metadata = %+v", meta)
	}
	if fallback.calls.Load() != 0 {
		t.Fatal("fallback should not be called")
	}
}

func TestGenerateTextFallsBackOnFailure(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", err: errors.New("Error 503, Service Unavailable")}
	fallback := &fakeProvider{name: "OpenAI", text: "진정"}
	mm := NewModelManagerWithProviders(primary, fallback, nil, zap.NewNop())

	text, meta, err := mm.GenerateText(context.Background(), "prompt", PresetBalanced, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "진정" || !meta.UsedFallback {
		t.Fatalf("text = %q, metadata = %+v", text, meta)
	}
}

func TestGenerateTextRejectionSkipsFallbackAndBreaker(t *testing.T) {
	rejected := apperrors.NewGenerativeError(apperrors.CodeGenerativeRejected, "blocked", "Gemini", nil)
	primary := &fakeProvider{name: "Gemini", err: rejected}
	fallback := &fakeProvider{name: "OpenAI", text: "unused"}
	mm := NewModelManagerWithProviders(primary, fallback, nil, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, _, err := mm.GenerateText(context.Background(), "prompt", PresetPrecise, nil)
		if apperrors.CodeOf(err) != apperrors.CodeGenerativeRejected {
			t.Fatalf("code = %q", apperrors.CodeOf(err))
		}
	}
	if fallback.calls.Load() != 0 {
		t.Fatal("fallback called after safety rejection")
	}
	if state := mm.GetCircuitStatus().State; state != util.CircuitStateClosed {
		t.Fatalf("breaker state = %s", state)
	}
}

func TestGenerateTextEmptyResponseIsUnavailable(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", text: "   "}
	mm := NewModelManagerWithProviders(primary, nil, nil, zap.NewNop())

	_, _, err := mm.GenerateText(context.Background(), "prompt", PresetPrecise, nil)
	if !errors.Is(err, apperrors.ErrGenerativeUnavailable) {
		t.Fatalf("expected GENERATIVE_UNAVAILABLE, got %v", err)
	}
}

func TestGenerateTextOpensCircuitOnServiceFailures(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", err: errors.New(`{"code":500,"message":"internal"}`)}
	mm := NewModelManagerWithProviders(primary, nil, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		mm.GenerateText(context.Background(), "prompt", PresetPrecise, nil)
	}
	if state := mm.GetCircuitStatus().State; state != util.CircuitStateOpen {
		t.Fatalf("breaker state = %s", state)
	}

	before := primary.calls.Load()
	_, _, err := mm.GenerateText(context.Background(), "prompt", PresetPrecise, nil)
	if apperrors.CodeOf(err) != apperrors.CodeGenerativeUnavailable {
		t.Fatalf("code = %q", apperrors.CodeOf(err))
	}
	if primary.calls.Load() != before {
		t.Fatal("provider called while circuit open")
	}

	mm.ResetCircuit()
	if mm.GetCircuitStatus().State != util.CircuitStateClosed {
		t.Fatal("reset did not close circuit")
	}
}

func TestServiceFailureClassification(t *testing.T) {
	tests := []struct {
		err         error
		failure     bool
		rateLimited bool
	}{
		{errors.New("Error 429, Too Many Requests"), true, true},
		{errors.New("POST /v1/chat: 502 Bad Gateway"), true, false},
		{errors.New(`{"code":400,"message":"bad request"}`), false, false},
		{context.DeadlineExceeded, true, false},
		{errors.New("quota exceeded"), true, true},
	}

	for _, tt := range tests {
		if got := isServiceFailure(tt.err); got != tt.failure {
			t.Errorf("isServiceFailure(%v) = %v", tt.err, got)
		}
		if got := isRateLimitError(tt.err); got != tt.rateLimited {
			t.Errorf("isRateLimitError(%v) = %v", tt.err, got)
		}
	}
}

func TestPresetConfig(t *testing.T) {
	cfg := GetPresetConfig(PresetBalanced)
	if cfg.Temperature != 0.7 || cfg.TopK != 40 || cfg.TopP != 0.95 || cfg.MaxOutputTokens != 1024 {
		t.Fatalf("balanced preset = %+v", cfg)
	}
	if GetPresetConfig("unknown") != cfg {
		t.Fatal("unknown preset should fall back to balanced")
	}

	over := applyOverrides(cfg, &GenerateOptions{Overrides: &ModelConfig{MaxOutputTokens: 64}})
	if over.MaxOutputTokens != 64 || over.Temperature != 0.7 {
		t.Fatalf("overrides = %+v", over)
	}
}
