package domain

import (
	"errors"
	"fmt"
)

// 预定义of领域错误
var (
	// ErrNotFound 资源不exists
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput 无效of输入
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration 服务端配置缺失（例如 API key）
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream 上游服务返回非成功状态
	ErrUpstream = errors.New("upstream error")
	// ErrFormat 上游返回了意外的内容格式
	ErrFormat = errors.New("unexpected response format")
	// ErrInternal Internal error
	ErrInternal = errors.New("internal error")
)

// DomainError 领域错误
type DomainError struct {
	Code    string
	Message string
	// Status is the HTTP status reported by an upstream service, 0 when not applicable.
	Status int
	Err    error
}

// Error implementation error interface（用于日志andInternal error传递）
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage 返回user友好of错误消息（不包含Internal error细节）
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap 返回包装of错误
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError create资源不exists错误
func NewNotFoundError(resourceType, id string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, id),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError create无效输入错误
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewConfigurationError create配置错误
func NewConfigurationError(message string) error {
	return &DomainError{
		Code:    "CONFIGURATION_ERROR",
		Message: message,
		Err:     ErrConfiguration,
	}
}

// NewUpstreamError wraps a non-success reply from an upstream service.
func NewUpstreamError(status int, message string) error {
	return &DomainError{
		Code:    "UPSTREAM_ERROR",
		Message: message,
		Status:  status,
		Err:     ErrUpstream,
	}
}

// NewFormatError create格式错误
func NewFormatError(message string) error {
	return &DomainError{
		Code:    "FORMAT_ERROR",
		Message: message,
		Err:     ErrFormat,
	}
}

// NewInternalError createInternal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred", // 不暴露Internal error细节
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound 判断is否为资源不exists错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput 判断is否为无效输入错误
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfiguration 判断is否为配置错误
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsUpstream 判断is否为上游错误
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsFormat 判断is否为格式错误
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsInternalError 判断is否为Internal error
func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}

// UpstreamStatus returns the upstream HTTP status carried by err, or 0.
func UpstreamStatus(err error) int {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Status
	}
	return 0
}
