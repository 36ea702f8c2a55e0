package repository

import (
	"context"
	"time"

	"suggestbox/internal/domain"
)

// NewSuggestion insert する行。status/admin_response/admin_responded_at は
// 常に open/null/null で入るため含めない。
type NewSuggestion struct {
	Content    string
	Category   string
	UserID     *string
	AuthorName *string
}

// ResponsePatch (admin_response, admin_responded_at, status) の三つ組。
// 部分更新は不変条件を壊すので、必ずまとめて書く。
type ResponsePatch struct {
	AdminResponse    *string
	AdminRespondedAt *time.Time
	Status           string
}

// SuggestionsRepository 特権ゲートウェイ。行レベル規則を迂回する
// サーバー専用クレデンシャルで接続する。管理者の書き込みと
// タイムライン読み出し（監査済みの単一経路）だけが使う。
type SuggestionsRepository interface {
	Insert(ctx context.Context, row NewSuggestion) error
	// ListAll created_at 降順、同時刻は id 降順
	ListAll(ctx context.Context) ([]*domain.Suggestion, error)
	UpdateResponse(ctx context.Context, id string, patch ResponsePatch) error
	Delete(ctx context.Context, id string) error
}

// MemberGateway 会員スコープのゲートウェイ。呼び出し元のトークンを
// そのまま運び、ストア側の行レベル規則（会員は insert のみ）に従う。
type MemberGateway interface {
	// Insert accessToken が空なら匿名投稿（公開キーのみ）
	Insert(ctx context.Context, row NewSuggestion, accessToken string) error
}
