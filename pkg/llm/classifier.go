package llm

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"learnpath/backend/config"
	pkgerrors "learnpath/backend/pkg/errors"
)

// 候选标签：试题正文 vs 试卷元信息（页眉、说明、分值等）
var candidateLabels = []string{"question", "metadata"}

type zeroShotRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []string `json:"candidate_labels"`
	} `json:"parameters"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// QuestionClassifier 零样本分类，判断一段文本是否为试题
type QuestionClassifier struct {
	http      *resty.Client
	url       string
	threshold float64
}

// NewQuestionClassifier Endpoint 为空时返回 nil，表示不启用分类
func NewQuestionClassifier(cfg *config.ClassifierConfig) *QuestionClassifier {
	if cfg.Endpoint == "" {
		return nil
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)

	return &QuestionClassifier{http: client, url: cfg.Endpoint, threshold: cfg.Threshold}
}

// IsQuestion "question" 标签得分超过阈值时返回 true
func (c *QuestionClassifier) IsQuestion(ctx context.Context, text string) (bool, error) {
	score, err := c.score(ctx, text)
	if err != nil {
		return false, err
	}
	return score > c.threshold, nil
}

func (c *QuestionClassifier) score(ctx context.Context, text string) (float64, error) {
	body := zeroShotRequest{Inputs: text}
	body.Parameters.CandidateLabels = candidateLabels

	var out zeroShotResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return 0, pkgerrors.NewUnreachable("classifier", err)
	}
	if resp.IsError() {
		return 0, &pkgerrors.UpstreamServiceError{
			Service:    "classifier",
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	for i, label := range out.Labels {
		if label == "question" && i < len(out.Scores) {
			return out.Scores[i], nil
		}
	}
	return 0, &pkgerrors.ResponseFormatError{Raw: resp.String(), Err: fmt.Errorf("响应缺少 question 标签")}
}
