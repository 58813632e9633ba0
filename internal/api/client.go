package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"daily-digits/internal/config"
	"daily-digits/internal/database"
	"daily-digits/internal/logger"
	"daily-digits/internal/service"
)

// APIError 服务端返回的 4xx 错误，不重试
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client API客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
	retryCount int
	retryDelay time.Duration
}

// NewClient 创建新的API客户端
func NewClient(cfg *config.API) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
	}
}

// saveResponse POST /api/results 的响应
type saveResponse struct {
	Message string               `json:"message"`
	Data    database.DailyRecord `json:"data"`
}

// GetPredictions 获取今天的预测
func (c *Client) GetPredictions(ctx context.Context) (*service.PredictionResult, error) {
	var result service.PredictionResult
	if err := c.do(ctx, http.MethodGet, "/api/predictions", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitResult 提交某天的实际结果
func (c *Client) SubmitResult(ctx context.Context, date string, digit1, digit2 int) (*database.DailyRecord, error) {
	body := map[string]interface{}{
		"date":   date,
		"digit1": digit1,
		"digit2": digit2,
	}

	var resp saveResponse
	if err := c.do(ctx, http.MethodPost, "/api/results", body, &resp); err != nil {
		return nil, err
	}
	logger.Debugf("Submit result: %s", resp.Message)
	return &resp.Data, nil
}

// GetHistory 获取最近 limit 条记录，limit <= 0 时使用服务端默认值
func (c *Client) GetHistory(ctx context.Context, limit int) ([]database.DailyRecord, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var records []database.DailyRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// HealthCheck 检查服务健康状态，返回 /healthz 的内容
func (c *Client) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	var status map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &status); err != nil {
		return nil, fmt.Errorf("API health check failed: %w", err)
	}

	logger.Debugf("API health check passed: %v", status)
	return status, nil
}

// GetAPIStats 获取客户端配置信息
func (c *Client) GetAPIStats() map[string]interface{} {
	return map[string]interface{}{
		"base_url":    c.baseURL,
		"timeout":     c.httpClient.Timeout.String(),
		"retry_count": c.retryCount,
		"retry_delay": c.retryDelay.String(),
	}
}

// do 发送请求；网络错误和 5xx 按线性退避重试，4xx 直接返回 *APIError
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			logger.Warnf("API request retry attempt %d/%d", attempt, c.retryCount)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		err := c.makeRequest(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}

	return fmt.Errorf("%s %s failed after %d attempts: %w", method, path, c.retryCount+1, lastErr)
}

// makeRequest 执行HTTP请求
func (c *Client) makeRequest(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	logger.Debugf("Making API request: %s %s%s", method, c.baseURL, path)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
