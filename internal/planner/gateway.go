package planner

import (
	"context"

	"go.uber.org/zap"

	pkgerrors "learnpath/backend/pkg/errors"
)

// TextGenerator 外部文本生成服务
// 非 2xx 响应应返回 *errors.UpstreamServiceError
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GatewayConfig 计划生成网关配置
type GatewayConfig struct {
	MinTopicsPerSlot    int
	MinQuestionsPerSlot int
	Policy              SchemaPolicy
}

// Gateway 构造指令、调用生成服务并校验返回的计划
type Gateway struct {
	gen    TextGenerator
	cfg    GatewayConfig
	logger *zap.Logger
}

func NewGateway(gen TextGenerator, cfg GatewayConfig, logger *zap.Logger) *Gateway {
	if cfg.MinTopicsPerSlot <= 0 {
		cfg.MinTopicsPerSlot = 2
	}
	if cfg.MinQuestionsPerSlot <= 0 {
		cfg.MinQuestionsPerSlot = 5
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyReject
	}
	return &Gateway{gen: gen, cfg: cfg, logger: logger}
}

// GeneratePlan 生成计划，返回计划与（warn 策略下被容忍的）违规信息
// 不做任何持久化，写入由调用方在校验通过后完成
func (g *Gateway) GeneratePlan(ctx context.Context, req GenerationRequest) (Schedule, []string, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	rules := Rules{
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		MinTopicsPerSlot:    g.cfg.MinTopicsPerSlot,
		MinQuestionsPerSlot: g.cfg.MinQuestionsPerSlot,
		RequireQuestions:    req.IncludeQuestions,
	}

	raw, err := g.gen.Generate(ctx, BuildPrompt(req, rules))
	if err != nil {
		g.logger.Error("计划生成服务调用失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, nil, err
	}

	schedule, err := ParseSchedule(raw)
	if err != nil {
		g.logger.Warn("计划响应解析失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, nil, err
	}

	v := ValidateSchedule(schedule, rules)
	if len(v.Structural) > 0 {
		return nil, nil, &pkgerrors.SchemaViolationError{Violations: v.All()}
	}
	if len(v.Soft) > 0 {
		if g.cfg.Policy == PolicyReject {
			return nil, nil, &pkgerrors.SchemaViolationError{Violations: v.Soft}
		}
		g.logger.Warn("计划未满足数量约束，按 warn 策略保存",
			zap.String("user_id", req.UserID),
			zap.Strings("violations", v.Soft),
		)
	}
	return schedule, v.Soft, nil
}
