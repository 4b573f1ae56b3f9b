package ai

// ModelPreset represents the model usage preset
type ModelPreset string

const (
	PresetPrecise  ModelPreset = "precise"  // 짧은 필드 (목적, 피부 타입)
	PresetBalanced ModelPreset = "balanced" // 설명, 번역
	PresetCreative ModelPreset = "creative" // 리포트 요약
)

// ModelConfig holds model configuration
type ModelConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// GenerateMetadata contains metadata about the generation
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
}

// GenerateOptions holds options for AI generation
type GenerateOptions struct {
	Model     string
	Overrides *ModelConfig
}

// GetPresetConfig returns the configuration for a preset
func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetPrecise:
		return ModelConfig{
			Temperature:     0.2,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 256,
		}
	case PresetCreative:
		return ModelConfig{
			Temperature:     0.9,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 2048,
		}
	case PresetBalanced:
		return ModelConfig{
			Temperature:     0.7,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 1024,
		}
	default:
		return GetPresetConfig(PresetBalanced)
	}
}

// GetOpenAIPresetConfig returns OpenAI configuration for a preset
func GetOpenAIPresetConfig(preset ModelPreset) OpenAIConfig {
	cfg := GetPresetConfig(preset)
	return OpenAIConfig{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxOutputTokens,
		TopP:        cfg.TopP,
	}
}

func applyOverrides(cfg ModelConfig, opts *GenerateOptions) ModelConfig {
	if opts == nil || opts.Overrides == nil {
		return cfg
	}
	if opts.Overrides.Temperature > 0 {
		cfg.Temperature = opts.Overrides.Temperature
	}
	if opts.Overrides.TopP > 0 {
		cfg.TopP = opts.Overrides.TopP
	}
	if opts.Overrides.TopK > 0 {
		cfg.TopK = opts.Overrides.TopK
	}
	if opts.Overrides.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.Overrides.MaxOutputTokens
	}
	return cfg
}
