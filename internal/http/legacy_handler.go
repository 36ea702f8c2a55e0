package httpapi

import (
	"net/http"

	"suggestbox/internal/i18n"
	"suggestbox/internal/service"

	"go.uber.org/zap"
)

// LegacyHandler 旧 /suggestion-box（公開の投稿箱）。会員認証なし。
type LegacyHandler struct {
	handlerBase
	svc    service.SuggestionService
	secure bool
}

// NewLegacyHandler 公開投稿箱 Handler を生成する
func NewLegacyHandler(svc service.SuggestionService, bundle *i18n.Bundle, secure bool, logger *zap.Logger) *LegacyHandler {
	return &LegacyHandler{
		handlerBase: handlerBase{bundle: bundle, logger: logger},
		svc:         svc,
		secure:      secure,
	}
}

// ServeHTTP は http.Handler を実装する
func (h *LegacyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/suggestion-box" && r.URL.Path != "/suggestion-box/" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.Timeline(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Timeline 公開タイムライン（キャッシュ経由）
func (h *LegacyHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListLegacyTimeline(r.Context())
	if err != nil {
		h.failErr(w, r, err, i18n.MsgLoginRequired, i18n.MsgOperationFailed)
		return
	}
	writeJSON(w, http.StatusOK, Ok(entries))
}

type legacyCreateRequest struct {
	Content    string `json:"content"`
	AuthorName string `json:"author_name"`
}

// Create 匿名投稿。投稿者 Cookie を発行し、表示名の帰属に使う。
func (h *LegacyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req legacyCreateRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgPostFailed)
		return
	}

	posterID := ensurePosterID(w, r, h.secure)

	err := h.svc.CreateLegacy(r.Context(), service.CreateLegacyRequest{
		Content:    req.Content,
		AuthorName: req.AuthorName,
		PosterID:   posterID,
	})
	if err != nil {
		h.failErr(w, r, err, i18n.MsgLoginRequired, i18n.MsgPostFailed)
		return
	}
	h.logger.Info("Legacy post accepted", zap.String("ip_address", getClientIP(r)))
	writeJSON(w, http.StatusOK, OkEmpty())
}
