// Package docai 封装外部文档分析服务：图片 OCR（Read API）与 PDF 版面分析（Layout）
// 两者都是异步任务：提交后从 Operation-Location 轮询结果
package docai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"learnpath/backend/config"
	pkgerrors "learnpath/backend/pkg/errors"
)

const (
	serviceName         = "docai"
	subscriptionHeader  = "Ocp-Apim-Subscription-Key"
	fallbackReadVersion = "v3.2"
)

// 异步任务状态
const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// Client 文档分析客户端
type Client struct {
	http          *resty.Client
	endpoint      string
	readVersion   string
	layoutVersion string
	interval      time.Duration
	maxAttempts   int
	maxBackoff    time.Duration
	logger        *zap.Logger
}

// NewClient 创建文档分析客户端
func NewClient(cfg *config.DocAIConfig, logger *zap.Logger) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader(subscriptionHeader, cfg.APIKey)

	return &Client{
		http:          client,
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		readVersion:   cfg.ReadVersion,
		layoutVersion: cfg.LayoutVersion,
		interval:      cfg.PollInterval,
		maxAttempts:   cfg.MaxAttempts,
		maxBackoff:    cfg.MaxBackoff,
		logger:        logger,
	}
}

// ── OCR ──

type readResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		ReadResults []struct {
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"readResults"`
	} `json:"analyzeResult"`
}

// ReadLines 识别图片中的文字，按页、按行返回原始文本
// 首选配置的 Read API 版本，未拿到 Operation-Location 时回退到 v3.2
func (c *Client) ReadLines(ctx context.Context, imageURL string) ([]string, error) {
	opURL, err := c.submitRead(ctx, c.readVersion, imageURL)
	if err != nil && c.readVersion != fallbackReadVersion {
		c.logger.Warn("Read API 提交失败，回退 v3.2", zap.String("version", c.readVersion), zap.Error(err))
		opURL, err = c.submitRead(ctx, fallbackReadVersion, imageURL)
	}
	if err != nil {
		return nil, err
	}

	var result readResult
	if err := c.poll(ctx, "OCR", opURL, &result, func() string { return result.Status }); err != nil {
		return nil, err
	}

	var lines []string
	for _, page := range result.AnalyzeResult.ReadResults {
		for _, line := range page.Lines {
			if text := strings.TrimSpace(line.Text); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return lines, nil
}

func (c *Client) submitRead(ctx context.Context, version, imageURL string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"url": imageURL}).
		Post(fmt.Sprintf("%s/vision/%s/read/analyze", c.endpoint, version))
	if err != nil {
		return "", pkgerrors.NewUnreachable(serviceName, err)
	}
	return operationLocation(resp)
}

// ── 版面分析 ──

type layoutResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		Content string `json:"content"`
	} `json:"analyzeResult"`
}

// AnalyzeLayout 对 PDF 做版面分析，返回全文内容
func (c *Client) AnalyzeLayout(ctx context.Context, pdf []byte) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/pdf").
		SetBody(pdf).
		Post(fmt.Sprintf("%s/formrecognizer/documentModels/prebuilt-layout:analyze?api-version=%s", c.endpoint, c.layoutVersion))
	if err != nil {
		return "", pkgerrors.NewUnreachable(serviceName, err)
	}
	opURL, err := operationLocation(resp)
	if err != nil {
		return "", err
	}

	var result layoutResult
	if err := c.poll(ctx, "版面分析", opURL, &result, func() string { return result.Status }); err != nil {
		return "", err
	}
	return result.AnalyzeResult.Content, nil
}

// ── 轮询 ──

func operationLocation(resp *resty.Response) (string, error) {
	loc := resp.Header().Get("Operation-Location")
	if resp.IsError() || loc == "" {
		return "", &pkgerrors.UpstreamServiceError{
			Service:    serviceName,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}
	return loc, nil
}

// poll 以指数退避轮询异步任务，直到 succeeded / failed 或次数耗尽
// 每次轮询的响应解码到 out，status 读取解码后的任务状态
func (c *Client) poll(ctx context.Context, op, url string, out interface{}, status func() string) error {
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := sleep(ctx, c.backoff(attempt)); err != nil {
			return err
		}

		resp, err := c.http.R().SetContext(ctx).Get(url)
		if err != nil {
			return pkgerrors.NewUnreachable(serviceName, err)
		}
		if resp.IsError() {
			return &pkgerrors.UpstreamServiceError{Service: serviceName, StatusCode: resp.StatusCode(), Body: resp.String()}
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return &pkgerrors.ResponseFormatError{Raw: resp.String(), Err: err}
		}

		switch status() {
		case statusSucceeded:
			return nil
		case statusFailed:
			return &pkgerrors.UpstreamServiceError{Service: serviceName, StatusCode: resp.StatusCode(), Body: resp.String()}
		}
		c.logger.Debug("异步任务未完成", zap.String("op", op), zap.Int("attempt", attempt+1), zap.String("status", status()))
	}
	return &pkgerrors.TimeoutError{Operation: op, Attempts: c.maxAttempts}
}

// backoff 第 n 次轮询前的等待时间：interval * 2^n，不超过 maxBackoff
func (c *Client) backoff(attempt int) time.Duration {
	if c.interval <= 0 {
		return 0
	}
	d := c.interval << uint(attempt)
	if c.maxBackoff > 0 && (d <= 0 || d > c.maxBackoff) {
		return c.maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
