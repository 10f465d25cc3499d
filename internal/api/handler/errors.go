package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"learnpath/backend/internal/service"
	pkgerrors "learnpath/backend/pkg/errors"
	"learnpath/backend/pkg/response"
	"learnpath/backend/pkg/validate"
)

// 通用错误码
const (
	codeInvalidParams    = 10001
	codeNotFound         = 10404
	codeBusy             = 10409
	codeUpstream         = 10502
	codeResponseFormat   = 10503
	codeTimeout          = 10504
	codeDocAIUnavailable = 10505
	codeSchemaViolation  = 20003
)

// 原始响应回显上限
const maxRawDetails = 2000

// bindFailed 请求绑定或校验失败
func bindFailed(c *gin.Context, err error) {
	response.TypedError(c, http.StatusBadRequest, codeInvalidParams, string(pkgerrors.KindValidation), "参数校验失败", validate.Describe(err))
}

// writeKindError 业务模块未单独处理的错误按分类映射：
//   - validation → 400，not_found → 404
//   - upstream / response_format → 502，schema_violation → 422
//   - timeout → 504，锁冲突 → 409
func writeKindError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLockBusy):
		response.TypedError(c, http.StatusConflict, codeBusy, "conflict", err.Error(), "")
		return
	case errors.Is(err, service.ErrDocAIUnavailable):
		response.TypedError(c, http.StatusServiceUnavailable, codeDocAIUnavailable, string(pkgerrors.KindUpstream), err.Error(), "")
		return
	case errors.Is(err, context.DeadlineExceeded):
		response.TypedError(c, http.StatusGatewayTimeout, codeTimeout, string(pkgerrors.KindTimeout), "请求超时", "")
		return
	}

	kind := pkgerrors.KindOf(err)
	switch kind {
	case pkgerrors.KindValidation:
		response.TypedError(c, http.StatusBadRequest, codeInvalidParams, string(kind), err.Error(), "")
	case pkgerrors.KindNotFound:
		response.TypedError(c, http.StatusNotFound, codeNotFound, string(kind), err.Error(), "")
	case pkgerrors.KindUpstream:
		var upstream *pkgerrors.UpstreamServiceError
		errors.As(err, &upstream)
		response.TypedError(c, http.StatusBadGateway, codeUpstream, string(kind), "上游服务调用失败", truncate(upstream.Body))
	case pkgerrors.KindResponseFormat:
		var format *pkgerrors.ResponseFormatError
		errors.As(err, &format)
		response.TypedError(c, http.StatusBadGateway, codeResponseFormat, string(kind), "上游响应格式错误", truncate(format.Raw))
	case pkgerrors.KindSchemaViolation:
		var schema *pkgerrors.SchemaViolationError
		errors.As(err, &schema)
		response.TypedError(c, http.StatusUnprocessableEntity, codeSchemaViolation, string(kind), "生成的计划不符合约束", strings.Join(schema.Violations, "; "))
	case pkgerrors.KindTimeout:
		response.TypedError(c, http.StatusGatewayTimeout, codeTimeout, string(kind), err.Error(), "")
	default:
		response.InternalError(c)
	}
}

func truncate(s string) string {
	if len(s) <= maxRawDetails {
		return s
	}
	return s[:maxRawDetails] + "..."
}
