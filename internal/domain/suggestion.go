package domain

import (
	"strings"
	"time"
)

// Suggestion 投稿（提案）领域模型
// (admin_response, admin_responded_at, status) 三个字段同生同灭：
// 三者要么全部为空（open），要么全部设置（responded）。
type Suggestion struct {
	ID               string     `json:"id"`
	Content          string     `json:"content"`
	Category         string     `json:"category"`
	UserID           *string    `json:"user_id"`
	AuthorName       *string    `json:"author_name"`
	Status           string     `json:"status"`
	AdminResponse    *string    `json:"admin_response"`
	AdminRespondedAt *time.Time `json:"admin_responded_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// 状态枚举。status 是派生字段，由 admin_response 的有无决定。
const (
	StatusOpen      = "open"
	StatusResponded = "responded"
)

// 投稿カテゴリ（閉じた列挙）
const (
	CategoryFacility   = "facility"
	CategoryWorkflow   = "workflow"
	CategoryEfficiency = "efficiency"
	CategoryWelfare    = "welfare"
	CategoryEvent      = "event"
	CategoryOther      = "other"
)

// Categories 正規のカテゴリ集合（表示順）
var Categories = []string{
	CategoryFacility,
	CategoryWorkflow,
	CategoryEfficiency,
	CategoryWelfare,
	CategoryEvent,
	CategoryOther,
}

// CategoryLabels カテゴリの日本語表示名
var CategoryLabels = map[string]string{
	CategoryFacility:   "設備修繕",
	CategoryWorkflow:   "授業アイデア",
	CategoryEfficiency: "業務効率化",
	CategoryWelfare:    "福利厚生",
	CategoryEvent:      "イベント・交流",
	CategoryOther:      "その他",
}

// NormalizeCategory 未知のカテゴリは "other" に正規化する。
// 書き込み時と読み出し時の両方で適用される。
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// DeriveStatus admin_response から status を導出する
func DeriveStatus(adminResponse *string) string {
	if adminResponse != nil && strings.TrimSpace(*adminResponse) != "" {
		return StatusResponded
	}
	return StatusOpen
}

// Consistent reports whether the response triple satisfies the invariant.
func (s *Suggestion) Consistent() bool {
	hasResponse := s.AdminResponse != nil
	hasTimestamp := s.AdminRespondedAt != nil
	if hasResponse != hasTimestamp {
		return false
	}
	if hasResponse {
		return s.Status == StatusResponded
	}
	return s.Status == StatusOpen
}
