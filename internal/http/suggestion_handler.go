package httpapi

import (
	"net/http"

	"suggestbox/internal/i18n"
	"suggestbox/internal/identity"
	"suggestbox/internal/service"

	"go.uber.org/zap"
)

// SuggestionHandler 会員アプリ（タイムライン＋投稿）
type SuggestionHandler struct {
	handlerBase
	svc service.SuggestionService
}

// NewSuggestionHandler 投稿 Handler を生成する
func NewSuggestionHandler(svc service.SuggestionService, bundle *i18n.Bundle, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		handlerBase: handlerBase{bundle: bundle, logger: logger},
		svc:         svc,
	}
}

// Timeline GET / 全員の投稿を新しい順で返す
func (h *SuggestionHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.svc.ListMemberTimeline(r.Context(), PrincipalFrom(r))
	if err != nil {
		h.failErr(w, r, err, i18n.MsgLoginRequired, i18n.MsgOperationFailed)
		return
	}
	writeJSON(w, http.StatusOK, Ok(entries))
}

type createSuggestionRequest struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Create POST /api/suggestions 会員の投稿
func (h *SuggestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req createSuggestionRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgPostFailed)
		return
	}

	accessToken := ""
	if c, err := r.Cookie(identity.AccessCookie); err == nil {
		accessToken = c.Value
	}

	err := h.svc.Create(r.Context(), service.CreateRequest{
		Content:     req.Content,
		Category:    req.Category,
		Actor:       PrincipalFrom(r),
		AccessToken: accessToken,
	})
	if err != nil {
		h.failErr(w, r, err, i18n.MsgLoginRequired, i18n.MsgPostFailed)
		return
	}
	writeJSON(w, http.StatusOK, OkEmpty())
}
