// Package llm 封装外部文本生成服务与零样本分类服务
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"learnpath/backend/config"
	pkgerrors "learnpath/backend/pkg/errors"
)

const serviceName = "llm"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ChatClient Azure OpenAI 风格的 chat completions 客户端
type ChatClient struct {
	http        *resty.Client
	url         string
	maxTokens   int
	temperature float64
}

// NewChatClient 创建客户端
// 配置了 deployment 时按 {endpoint}/openai/deployments/{deployment}/chat/completions 拼接，
// 否则直接把 endpoint 当作完整地址
func NewChatClient(cfg *config.LLMConfig) *ChatClient {
	url := cfg.Endpoint
	if cfg.Deployment != "" {
		url = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			strings.TrimRight(cfg.Endpoint, "/"), cfg.Deployment, cfg.APIVersion)
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("api-key", cfg.APIKey)

	return &ChatClient{
		http:        client,
		url:         url,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Generate 发送单条 system 指令并返回模型回复的文本
// 非 2xx 返回 UpstreamServiceError；回复结构缺失返回 ResponseFormatError
func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Messages:    []chatMessage{{Role: "system", Content: prompt}},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
		}).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return "", pkgerrors.NewUnreachable(serviceName, err)
	}
	if resp.IsError() {
		return "", &pkgerrors.UpstreamServiceError{
			Service:    serviceName,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}
	if len(out.Choices) == 0 {
		return "", &pkgerrors.ResponseFormatError{Raw: resp.String(), Err: errors.New("响应中没有 choices")}
	}
	return out.Choices[0].Message.Content, nil
}
