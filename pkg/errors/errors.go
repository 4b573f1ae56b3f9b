package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeAppError              = "APP_ERROR"
	CodeValidation            = "VALIDATION_ERROR"
	CodeCache                 = "CACHE_ERROR"
	CodeService               = "SERVICE_ERROR"
	CodeExtractionEmpty       = "EXTRACTION_EMPTY"
	CodeNoCandidates          = "NO_CANDIDATES"
	CodeRemoteUnavailable     = "REMOTE_UNAVAILABLE"
	CodeRemoteTimeout         = "REMOTE_TIMEOUT"
	CodeRemoteMalformed       = "REMOTE_MALFORMED"
	CodeGenerativeRejected    = "GENERATIVE_REJECTED"
	CodeGenerativeUnavailable = "GENERATIVE_UNAVAILABLE"
)

// Sentinels for errors.Is. Matching is by code, so any AppError carrying the
// same code satisfies errors.Is(err, ErrRemoteTimeout) and friends.
var (
	ErrExtractionEmpty       = &AppError{Message: "ingredient section not found", Code: CodeExtractionEmpty}
	ErrNoCandidates          = &AppError{Message: "no ingredient candidates", Code: CodeNoCandidates}
	ErrRemoteUnavailable     = &AppError{Message: "analysis service unavailable", Code: CodeRemoteUnavailable}
	ErrRemoteTimeout         = &AppError{Message: "analysis service timed out", Code: CodeRemoteTimeout}
	ErrRemoteMalformed       = &AppError{Message: "analysis service returned a malformed response", Code: CodeRemoteMalformed}
	ErrGenerativeRejected    = &AppError{Message: "generation rejected by content filter", Code: CodeGenerativeRejected}
	ErrGenerativeUnavailable = &AppError{Message: "generative service unavailable", Code: CodeGenerativeUnavailable}
)

var userMessages = map[string]string{
	CodeExtractionEmpty:       "전성분 영역을 찾지 못했습니다. 성분 표시 부분이 잘 보이도록 다시 촬영해주세요.",
	CodeNoCandidates:          "인식된 성분이 없습니다. 다시 스캔해주세요.",
	CodeRemoteUnavailable:     "분석 서버에 연결할 수 없습니다. 네트워크 상태를 확인한 뒤 다시 시도해주세요.",
	CodeRemoteTimeout:         "분석 서버 응답이 지연되고 있습니다. 잠시 후 다시 시도해주세요.",
	CodeRemoteMalformed:       "분석 결과를 해석할 수 없습니다. 잠시 후 다시 시도해주세요.",
	CodeGenerativeRejected:    "이 성분에 대한 설명을 생성할 수 없습니다.",
	CodeGenerativeUnavailable: "AI 서비스에 일시적인 문제가 발생했습니다. 잠시 후 다시 시도해주세요",
}

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// ErrorCode exposes the code to wrapper types through method promotion.
func (e *AppError) ErrorCode() string {
	return e.Code
}

// UserMessage returns the localized text shown to the user for this error.
func (e *AppError) UserMessage() string {
	return messageFor(e.Code)
}

func messageFor(code string) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return "알 수 없는 오류가 발생했습니다."
}

// ExtractionError reports a scan that produced nothing usable.
type ExtractionError struct {
	*AppError
	InputLength int
}

func NewExtractionError(code string, inputLength int) *ExtractionError {
	msg := ErrNoCandidates.Message
	if code == CodeExtractionEmpty {
		msg = ErrExtractionEmpty.Message
	}
	return &ExtractionError{
		AppError: &AppError{
			Message:    msg,
			Code:       code,
			StatusCode: 422,
			Context: map[string]any{
				"input_length": inputLength,
			},
		},
		InputLength: inputLength,
	}
}

// RemoteError is a failure talking to the remote analysis service.
type RemoteError struct {
	*AppError
	Endpoint string
}

func NewRemoteError(code, message, endpoint string, statusCode int, cause error) *RemoteError {
	return &RemoteError{
		AppError: &AppError{
			Message:    message,
			Code:       code,
			StatusCode: statusCode,
			Context: map[string]any{
				"endpoint": endpoint,
			},
			Cause: cause,
		},
		Endpoint: endpoint,
	}
}

// GenerativeError is a failure of the generative-text collaborator.
type GenerativeError struct {
	*AppError
	Provider string
}

func NewGenerativeError(code, message, provider string, cause error) *GenerativeError {
	return &GenerativeError{
		AppError: &AppError{
			Message:    message,
			Code:       code,
			StatusCode: 503,
			Context: map[string]any{
				"provider": provider,
			},
			Cause: cause,
		},
		Provider: provider,
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

type coded interface {
	ErrorCode() string
}

// CodeOf returns the code of the first typed error in err's chain, or "".
func CodeOf(err error) string {
	var c coded
	if stderrors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// UserMessage returns the localized message for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return messageFor(CodeOf(err))
}

// Is forwards to the standard library so callers need only this package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
