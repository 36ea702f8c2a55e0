package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RestMemberGateway 会員スコープのゲートウェイ実装。
// ストアの REST エンドポイント（PostgREST 互換）に公開キー＋呼び出し元の
// トークンでアクセスする。行レベル規則により insert だけが通る。
type RestMemberGateway struct {
	httpClient *resty.Client
	anonKey    string
	logger     *zap.Logger
}

// NewRestMemberGateway 会員ゲートウェイを生成する
func NewRestMemberGateway(baseURL, anonKey string, logger *zap.Logger) *RestMemberGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", anonKey).
		SetHeader("Prefer", "return=minimal")

	return &RestMemberGateway{httpClient: client, anonKey: anonKey, logger: logger}
}

var _ MemberGateway = (*RestMemberGateway)(nil)

// Insert 行を投入する。accessToken が空なら匿名（公開キーのみ）。
func (g *RestMemberGateway) Insert(ctx context.Context, row NewSuggestion, accessToken string) error {
	body := map[string]any{
		"content":            row.Content,
		"category":           row.Category,
		"user_id":            row.UserID,
		"author_name":        row.AuthorName,
		"status":             "open",
		"admin_response":     nil,
		"admin_responded_at": nil,
	}

	bearer := accessToken
	if bearer == "" {
		bearer = g.anonKey
	}

	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetBody(body).
		Post("/rest/v1/suggestions")
	if err != nil {
		return fmt.Errorf("failed to call store: %w", err)
	}
	if resp.IsError() {
		g.logger.Error("Store rejected insert",
			zap.Int("status_code", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return fmt.Errorf("store insert failed: status %d", resp.StatusCode())
	}
	return nil
}
