package constants

import "time"

var ParsingLimits = struct {
	MinNameLen         int
	MaxNameLen         int
	MaxIngredientCount int
	MinKnownNameLen    int
	MaxDictionarySize  int
	MaxSplitDepth      int
}{
	MinNameLen:         2,   // 성분명 최소 글자 수
	MaxNameLen:         50,  // 성분명 최대 글자 수
	MaxIngredientCount: 50,  // 한 번의 스캔에서 처리하는 최대 성분 수
	MinKnownNameLen:    3,   // 분리 기준으로 쓰는 사전 성분명 최소 길이
	MaxDictionarySize:  512, // 분리용 사전 크기 상한
	MaxSplitDepth:      2,
}

var CacheConfig = struct {
	FieldCapacity int
}{
	FieldCapacity: 100, // 필드 종류별 LRU 용량
}

var RedisConfig = struct {
	ReadyTimeout      time.Duration
	DefaultProfileKey string
}{
	ReadyTimeout:      5 * time.Second,
	DefaultProfileKey: "skincheck:profile:default",
}

var GenerationLimits = struct {
	PurposeMaxRunes           int
	ShortDescriptionThreshold int
	LongDescriptionClip       int
	DetailedReportMinRunes    int
	ReportIngredientCount     int
	ReportGoodCount           int
	ReportCautionCount        int
	TopPurposeCount           int
	Timeout                   time.Duration
	RequestsPerSecond         float64
	Burst                     int
}{
	PurposeMaxRunes:           20,
	ShortDescriptionThreshold: 150, // 이보다 짧은 설명은 단순 번역, 길면 요약 번역
	LongDescriptionClip:       500,
	DetailedReportMinRunes:    100, // 서버 리포트가 이보다 길면 그대로 사용
	ReportIngredientCount:     5,
	ReportGoodCount:           3,
	ReportCautionCount:        2,
	TopPurposeCount:           3,
	Timeout:                   20 * time.Second,
	RequestsPerSecond:         5,
	Burst:                     5,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:        30 * time.Second, // 기본 재시도 대기 시간 (30초)
	RateLimitTimeout:    10 * time.Minute, // 429 Rate Limit 전용 타임아웃
	HealthCheckInterval: 5 * time.Minute,  // Health Check 주기
	HealthCheckTimeout:  10 * time.Second, // Health Check 타임아웃 (10초)
}

var APIConfig = struct {
	AnalysisBaseURL string
	AnalyzePath     string
	AnalysisTimeout time.Duration
	UserAgent       string
}{
	AnalysisBaseURL: "http://localhost:8000",
	AnalyzePath:     "/analyze_product",
	AnalysisTimeout: 30 * time.Second,
	UserAgent:       "skincheck-go/1.0",
}

var EnrichmentConfig = struct {
	Concurrency int
	EventBuffer int
}{
	Concurrency: 8,
	EventBuffer: 64,
}
