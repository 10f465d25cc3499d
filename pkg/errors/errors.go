package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind 错误分类，决定 HTTP 状态码与前端处理策略（重试 / 修改输入 / 永久失败）
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindUpstream        Kind = "upstream"
	KindResponseFormat  Kind = "response_format"
	KindSchemaViolation Kind = "schema_violation"
	KindTimeout         Kind = "timeout"
	KindInternal        Kind = "internal"
)

// ValidationError 调用方输入不合法
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "参数校验失败: " + e.Reason
	}
	return fmt.Sprintf("参数校验失败: %s %s", e.Field, e.Reason)
}

// NewValidation 创建输入校验错误
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError 指定资源不存在
// 通常作为包级哨兵使用，配合 errors.Is 按指针判等
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + "不存在"
}

// NewNotFound 创建资源不存在错误
func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// UpstreamServiceError 外部服务（文本生成 / 文档分析）返回非成功状态或无法连通
// 连接、DNS、TLS 等传输层失败时 StatusCode 为 0，Err 保留原始错误
type UpstreamServiceError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("上游服务 %s 不可达: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("上游服务 %s 调用失败: status=%d body=%s", e.Service, e.StatusCode, truncate(e.Body, 512))
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

// NewUnreachable 包装传输层失败
func NewUnreachable(service string, err error) *UpstreamServiceError {
	return &UpstreamServiceError{Service: service, Body: err.Error(), Err: err}
}

// ResponseFormatError 上游返回成功但内容无法按约定解析，Raw 保留原始文本用于排查
type ResponseFormatError struct {
	Raw string
	Err error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("上游响应格式错误: %v", e.Err)
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }

// SchemaViolationError 解析成功但计划内容违反结构约束
type SchemaViolationError struct {
	Violations []string
}

func (e *SchemaViolationError) Error() string {
	return "生成的计划不符合约束: " + strings.Join(e.Violations, "; ")
}

// TimeoutError 异步任务轮询超过次数上限
type TimeoutError struct {
	Operation string
	Attempts  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s 超时: 已轮询 %d 次", e.Operation, e.Attempts)
}

// KindOf 返回错误所属分类，未识别的错误归为 internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		upstreamErr   *UpstreamServiceError
		formatErr     *ResponseFormatError
		schemaErr     *SchemaViolationError
		timeoutErr    *TimeoutError
	)
	switch {
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &notFoundErr):
		return KindNotFound
	case errors.As(err, &schemaErr):
		return KindSchemaViolation
	case errors.As(err, &formatErr):
		return KindResponseFormat
	case errors.As(err, &upstreamErr):
		return KindUpstream
	case errors.As(err, &timeoutErr):
		return KindTimeout
	default:
		return KindInternal
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
