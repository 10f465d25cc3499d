package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	sentinel := NewNotFound("学习计划")

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", NewValidation("start_date", "必须早于 end_date"), KindValidation},
		{"wrapped not found", fmt.Errorf("查询失败: %w", sentinel), KindNotFound},
		{"upstream", &UpstreamServiceError{Service: "llm", StatusCode: 503}, KindUpstream},
		{"format", &ResponseFormatError{Raw: "oops", Err: errors.New("bad json")}, KindResponseFormat},
		{"schema", &SchemaViolationError{Violations: []string{"x"}}, KindSchemaViolation},
		{"timeout", &TimeoutError{Operation: "layout", Attempts: 10}, KindTimeout},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("期望 %q，实际 %q", tc.want, got)
			}
		})
	}
}

func TestNotFoundSentinelIdentity(t *testing.T) {
	a := NewNotFound("学习计划")
	b := NewNotFound("学习计划")

	if !errors.Is(fmt.Errorf("wrap: %w", a), a) {
		t.Error("包装后的哨兵应能被 errors.Is 识别")
	}
	if errors.Is(a, b) {
		t.Error("不同哨兵实例不应相等")
	}
}

func TestUpstreamServiceError_TruncatesBody(t *testing.T) {
	body := make([]byte, 2000)
	for i := range body {
		body[i] = 'a'
	}
	err := &UpstreamServiceError{Service: "llm", StatusCode: 500, Body: string(body)}
	if len(err.Error()) > 700 {
		t.Errorf("错误信息应截断，实际长度 %d", len(err.Error()))
	}
}

func TestNewUnreachable(t *testing.T) {
	cause := fmt.Errorf("dial tcp 127.0.0.1:1: %w", errors.New("connection refused"))
	err := fmt.Errorf("生成计划: %w", NewUnreachable("llm", cause))

	if got := KindOf(err); got != KindUpstream {
		t.Errorf("传输层失败应归为 upstream，实际=%s", got)
	}
	var upstream *UpstreamServiceError
	if !errors.As(err, &upstream) || upstream.StatusCode != 0 || upstream.Body != cause.Error() {
		t.Errorf("unexpected upstream error: %+v", upstream)
	}
	if !errors.Is(err, cause) {
		t.Error("应能通过 errors.Is 找到原始错误")
	}
}
