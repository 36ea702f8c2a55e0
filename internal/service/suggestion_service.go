package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"suggestbox/internal/authz"
	"suggestbox/internal/domain"
	"suggestbox/internal/repository"
	"suggestbox/internal/store"

	"go.uber.org/zap"
)

// legacyTimelineCacheKey 公開タイムラインのキャッシュキー
const legacyTimelineCacheKey = "suggestbox:legacy-timeline"

// legacyTimelineCacheTTL 書き込みで Del されるため短くてよい
const legacyTimelineCacheTTL = 10 * time.Second

// SuggestionService 投稿の業務操作。全ての入口で授権チェックを行う。
type SuggestionService interface {
	// Create 会員の投稿（members' app）
	Create(ctx context.Context, req CreateRequest) error
	// CreateLegacy 旧 /suggestion-box の公開投稿（会員認証なし）
	CreateLegacy(ctx context.Context, req CreateLegacyRequest) error
	// ListMemberTimeline 会員向けタイムライン（新しい順）
	ListMemberTimeline(ctx context.Context, actor domain.Principal) ([]TimelineEntry, error)
	// ListLegacyTimeline 公開タイムライン（キャッシュ経由）
	ListLegacyTimeline(ctx context.Context) ([]TimelineEntry, error)
	// ListAdminDashboard 管理者ダッシュボード（集計付き）
	ListAdminDashboard(ctx context.Context, actor domain.Principal, categoryFilter string) (*Dashboard, error)
	// SetResponse 管理者の返答を設定。trim 後空なら ClearResponse と同値。
	SetResponse(ctx context.Context, actor domain.Principal, id, text string) error
	// ClearResponse 返答を取り消して open に戻す
	ClearResponse(ctx context.Context, actor domain.Principal, id string) error
	// Delete 行削除（管理者のみ）
	Delete(ctx context.Context, actor domain.Principal, id string) error
}

// suggestionService 実装
type suggestionService struct {
	repo   repository.SuggestionsRepository
	member repository.MemberGateway
	kv     store.KV
	logger *zap.Logger
	now    func() time.Time
}

// NewSuggestionService SuggestionService を生成する。
// repo は特権ゲートウェイ。タイムライン読み出しと管理者書き込み以外で
// 使ってはならない。
func NewSuggestionService(
	repo repository.SuggestionsRepository,
	member repository.MemberGateway,
	kv store.KV,
	logger *zap.Logger,
) SuggestionService {
	return &suggestionService{
		repo:   repo,
		member: member,
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// CreateRequest 会員投稿リクエスト
type CreateRequest struct {
	Content  string
	Category string
	Actor    domain.Principal
	// AccessToken 呼び出し元会員のトークン。会員ゲートウェイがそのまま運ぶ。
	AccessToken string
}

// CreateLegacyRequest 公開投稿リクエスト
type CreateLegacyRequest struct {
	Content    string
	AuthorName string
	// PosterID 投稿者 Cookie の UUID。表示名の匿名帰属に使う。
	PosterID string
}

// TimelineEntry タイムライン一行。表示名とカテゴリ表示名を補った投稿。
type TimelineEntry struct {
	domain.Suggestion
	DisplayName   string `json:"display_name"`
	CategoryLabel string `json:"category_label"`
}

// Dashboard 管理者ダッシュボードのスナップショット。
// 集計は読み出し時点のもので、行が並行して変わればずれうる。
type Dashboard struct {
	Suggestions []TimelineEntry `json:"suggestions"`
	Summary     Summary         `json:"summary"`
}

// Summary 集計
type Summary struct {
	Total      int            `json:"total"`
	Open       int            `json:"open"`
	Responded  int            `json:"responded"`
	ByCategory map[string]int `json:"by_category"`
}

// Create 会員の投稿
func (s *suggestionService) Create(ctx context.Context, req CreateRequest) error {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return domain.ErrEmptyContent
	}
	if !authz.Authorize(req.Actor, authz.OpCreateSuggestion) {
		s.logger.Warn("Suggestion create denied",
			zap.Bool("is_member", req.Actor.IsMember()),
			zap.Bool("is_admin", req.Actor.Admin),
		)
		return domain.ErrUnauthorized
	}

	row := repository.NewSuggestion{
		Content:  content,
		Category: domain.NormalizeCategory(req.Category),
	}
	if req.Actor.IsMember() {
		id := req.Actor.MemberID
		row.UserID = &id
	}

	if err := s.member.Insert(ctx, row, req.AccessToken); err != nil {
		return err
	}
	s.invalidateLegacyCache(ctx)
	s.logger.Info("Suggestion created",
		zap.String("category", row.Category),
		zap.String("user_id", req.Actor.MemberID),
	)
	return nil
}

// CreateLegacy 公開投稿。author_name が無ければ投稿者 Cookie から
// 安定した匿名ハンドルを刻む。
func (s *suggestionService) CreateLegacy(ctx context.Context, req CreateLegacyRequest) error {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return domain.ErrEmptyContent
	}
	if !authz.Authorize(domain.Anonymous, authz.OpCreateLegacy) {
		return domain.ErrUnauthorized
	}

	row := repository.NewSuggestion{
		Content:  content,
		Category: domain.CategoryOther,
	}
	authorName := strings.TrimSpace(req.AuthorName)
	if authorName == "" && req.PosterID != "" {
		authorName = "guest-" + shortHash(req.PosterID)
	}
	if authorName != "" {
		row.AuthorName = &authorName
	}

	// 匿名投稿：トークンなし（公開キーのみ）
	if err := s.member.Insert(ctx, row, ""); err != nil {
		return err
	}
	s.invalidateLegacyCache(ctx)
	s.logger.Info("Legacy suggestion created", zap.String("author", authorName))
	return nil
}

// ListMemberTimeline 会員向けタイムライン。
// ストアの行レベル規則は会員の横断読み出しを禁じているため、
// ここだけが特権ゲートウェイで読む（入口で授権済み）。
func (s *suggestionService) ListMemberTimeline(ctx context.Context, actor domain.Principal) ([]TimelineEntry, error) {
	if !authz.Authorize(actor, authz.OpListTimeline) {
		return nil, domain.ErrUnauthorized
	}
	return s.listAll(ctx)
}

// ListLegacyTimeline 公開タイムライン。Redis のスナップショット経由。
func (s *suggestionService) ListLegacyTimeline(ctx context.Context) ([]TimelineEntry, error) {
	if !authz.Authorize(domain.Anonymous, authz.OpListLegacy) {
		return nil, domain.ErrUnauthorized
	}

	if cached, err := s.kv.Get(ctx, legacyTimelineCacheKey); err == nil {
		var entries []TimelineEntry
		if jsonErr := json.Unmarshal([]byte(cached), &entries); jsonErr == nil {
			return entries, nil
		}
	} else if err != store.ErrMiss {
		s.logger.Warn("Timeline cache read failed", zap.Error(err))
	}

	entries, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(entries); err == nil {
		if err := s.kv.Set(ctx, legacyTimelineCacheKey, string(payload), legacyTimelineCacheTTL); err != nil {
			s.logger.Warn("Timeline cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// ListAdminDashboard 管理者ダッシュボード
func (s *suggestionService) ListAdminDashboard(ctx context.Context, actor domain.Principal, categoryFilter string) (*Dashboard, error) {
	if !authz.Authorize(actor, authz.OpListDashboard) {
		return nil, domain.ErrUnauthorized
	}

	entries, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := Summary{ByCategory: make(map[string]int)}
	filtered := make([]TimelineEntry, 0, len(entries))
	for _, e := range entries {
		summary.Total++
		if e.Status == domain.StatusResponded {
			summary.Responded++
		} else {
			summary.Open++
		}
		summary.ByCategory[e.Category]++

		if categoryFilter == "" || e.Category == categoryFilter {
			filtered = append(filtered, e)
		}
	}

	return &Dashboard{Suggestions: filtered, Summary: summary}, nil
}

// SetResponse 返答を設定する
func (s *suggestionService) SetResponse(ctx context.Context, actor domain.Principal, id, text string) error {
	if !authz.Authorize(actor, authz.OpSetResponse) {
		return domain.ErrUnauthorized
	}

	trimmed := strings.TrimSpace(text)
	patch := repository.ResponsePatch{Status: domain.StatusOpen}
	if trimmed != "" {
		now := s.now().UTC()
		patch.AdminResponse = &trimmed
		patch.AdminRespondedAt = &now
		patch.Status = domain.StatusResponded
	}

	if err := s.repo.UpdateResponse(ctx, id, patch); err != nil {
		return err
	}
	s.invalidateLegacyCache(ctx)
	s.logger.Info("Admin response updated",
		zap.String("suggestion_id", id),
		zap.String("status", patch.Status),
	)
	return nil
}

// ClearResponse 返答を取り消す
func (s *suggestionService) ClearResponse(ctx context.Context, actor domain.Principal, id string) error {
	return s.SetResponse(ctx, actor, id, "")
}

// Delete 行削除
func (s *suggestionService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	if !authz.Authorize(actor, authz.OpDeleteSuggestion) {
		return domain.ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateLegacyCache(ctx)
	s.logger.Info("Suggestion deleted", zap.String("suggestion_id", id))
	return nil
}

// listAll 特権読み出し＋表示用フィールドの補完
func (s *suggestionService) listAll(ctx context.Context) ([]TimelineEntry, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]TimelineEntry, 0, len(rows))
	for _, row := range rows {
		sg := *row
		sg.Category = domain.NormalizeCategory(sg.Category)
		sg.Status = domain.DeriveStatus(sg.AdminResponse)
		entries = append(entries, TimelineEntry{
			Suggestion:    sg,
			DisplayName:   displayName(&sg),
			CategoryLabel: domain.CategoryLabels[sg.Category],
		})
	}
	return entries, nil
}

// displayName author_name 優先。無ければ user_id から安定ハンドルを導出。
func displayName(s *domain.Suggestion) string {
	if s.AuthorName != nil && strings.TrimSpace(*s.AuthorName) != "" {
		return strings.TrimSpace(*s.AuthorName)
	}
	if s.UserID != nil && *s.UserID != "" {
		return "member-" + shortHash(*s.UserID)
	}
	return "匿名メンバー"
}

// shortHash SHA-256 の先頭8 hex。表示用の安定識別子。
func shortHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func (s *suggestionService) invalidateLegacyCache(ctx context.Context) {
	if err := s.kv.Del(ctx, legacyTimelineCacheKey); err != nil {
		s.logger.Warn("Timeline cache invalidation failed", zap.Error(err))
	}
}
