package httpapi

import (
	"net/http"
	"strings"
	"time"

	"suggestbox/internal/admin"
	"suggestbox/internal/i18n"
	"suggestbox/internal/service"

	"go.uber.org/zap"
)

// AdminHandler 管理画面の操作一式。
// 認可はルートガードではなく、ここで毎回 admin セッションを検証して行う。
type AdminHandler struct {
	handlerBase
	svc      service.SuggestionService
	sessions *admin.Sessions
}

// NewAdminHandler 管理者 Handler を生成する
func NewAdminHandler(svc service.SuggestionService, sessions *admin.Sessions, bundle *i18n.Bundle, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		handlerBase: handlerBase{bundle: bundle, logger: logger},
		svc:         svc,
		sessions:    sessions,
	}
}

// ServeHTTP は http.Handler を実装する
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/suggestion-box/admin/login":
		switch r.Method {
		case http.MethodGet:
			// 管理者ログインフォーム。Cookie なしでも 200。
			writeJSON(w, http.StatusOK, OkEmpty())
		case http.MethodPost:
			h.Login(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case path == "/suggestion-box/admin/logout":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Logout(w, r)
	case path == "/suggestion-box/admin":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Dashboard(w, r)
	case path == "/suggestion-box/admin/export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Export(w, r)
	case strings.HasPrefix(path, "/suggestion-box/admin/suggestions/"):
		h.suggestionByID(w, r, strings.TrimPrefix(path, "/suggestion-box/admin/suggestions/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// suggestionByID /suggestions/{id} と /suggestions/{id}/response の振り分け
func (h *AdminHandler) suggestionByID(w http.ResponseWriter, r *http.Request, rest string) {
	if id, ok := strings.CutSuffix(rest, "/response"); ok {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.UpdateResponse(w, r, id)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.Delete(w, r, rest)
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

// Login 共有シークレットの検証とセッション発行
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgPasswordRequired)
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgPasswordRequired)
		return
	}

	if !h.sessions.Verify(req.Password) {
		h.logger.Warn("Admin login failed",
			zap.String("ip_address", getClientIP(r)),
			zap.String("user_agent", r.UserAgent()),
		)
		h.fail(w, r, http.StatusUnauthorized, i18n.MsgPasswordIncorrect)
		return
	}

	if err := h.sessions.OpenSession(w); err != nil {
		h.failErr(w, r, err, i18n.MsgAdminLoginRequired, i18n.MsgOperationFailed)
		return
	}
	h.logger.Info("Admin login successful",
		zap.String("ip_address", getClientIP(r)),
		zap.Time("login_time", time.Now()),
	)
	writeJSON(w, http.StatusOK, OkEmpty())
}

// Logout セッション Cookie を削除
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.CloseSession(w)
	writeJSON(w, http.StatusOK, OkEmpty())
}

// Dashboard 一覧＋集計。?category= で絞り込み。
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.ListAdminDashboard(r.Context(), PrincipalFrom(r), r.URL.Query().Get("category"))
	if err != nil {
		h.failErr(w, r, err, i18n.MsgAdminLoginRequired, i18n.MsgOperationFailed)
		return
	}
	writeJSON(w, http.StatusOK, Ok(dashboard))
}

type updateResponseRequest struct {
	AdminResponse string `json:"admin_response"`
}

// UpdateResponse 返答の設定。trim 後空なら取り消しと同値。
func (h *AdminHandler) UpdateResponse(w http.ResponseWriter, r *http.Request, id string) {
	var req updateResponseRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgResponseSaveFailed)
		return
	}

	err := h.svc.SetResponse(r.Context(), PrincipalFrom(r), id, req.AdminResponse)
	if err != nil {
		h.failErr(w, r, err, i18n.MsgAdminLoginRequired, i18n.MsgResponseSaveFailed)
		return
	}
	writeJSON(w, http.StatusOK, OkEmpty())
}

// Delete 行削除
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.svc.Delete(r.Context(), PrincipalFrom(r), id)
	if err != nil {
		h.failErr(w, r, err, i18n.MsgAdminLoginRequired, i18n.MsgDeleteFailed)
		return
	}
	writeJSON(w, http.StatusOK, OkEmpty())
}

// Export ダッシュボードの Excel エクスポート
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.ListAdminDashboard(r.Context(), PrincipalFrom(r), r.URL.Query().Get("category"))
	if err != nil {
		h.failErr(w, r, err, i18n.MsgAdminLoginRequired, i18n.MsgOperationFailed)
		return
	}

	data, err := GenerateSuggestionsExport(dashboard.Suggestions)
	if err != nil {
		h.logger.Error("Excel export failed", zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, i18n.MsgOperationFailed)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="suggestions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
