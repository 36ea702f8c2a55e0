package httpapi

import (
	"net/http"
	"strings"

	"suggestbox/internal/i18n"
	"suggestbox/internal/identity"

	"go.uber.org/zap"
)

// AuthHandler 会員の登録・サインイン・サインアウト
type AuthHandler struct {
	handlerBase
	identity *identity.Client
}

// NewAuthHandler 会員認証 Handler を生成する
func NewAuthHandler(identityClient *identity.Client, bundle *i18n.Bundle, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		handlerBase: handlerBase{bundle: bundle, logger: logger},
		identity:    identityClient,
	}
}

// ServeHTTP は http.Handler を実装する
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		switch r.Method {
		case http.MethodGet:
			// ログインフォームの提示はプレゼンテーション層の責務。
			// ここでは 200 を返すだけでよい。
			writeJSON(w, http.StatusOK, OkEmpty())
		case http.MethodPost:
			h.SignIn(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/login/signup":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, OkEmpty())
		case http.MethodPost:
			h.SignUp(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/logout":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SignOut(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn メール＋パスワードでサインインし、提供元セッションを Cookie へ
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgSignInFailed)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgInvalidCredentials)
		return
	}

	session, err := h.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Member sign-in failed",
			zap.String("ip_address", getClientIP(r)),
			zap.String("user_agent", r.UserAgent()),
			zap.Error(err),
		)
		h.failErr(w, r, err, i18n.MsgLoginRequired, i18n.MsgSignInFailed)
		return
	}

	h.identity.SetSessionCookies(w, session)
	h.logger.Info("Member sign-in successful",
		zap.String("user_id", session.User.ID),
		zap.String("ip_address", getClientIP(r)),
	)
	writeJSON(w, http.StatusOK, OkEmpty())
}

// SignUp 新規登録。提供元が即セッションを返す設定ならそのままログイン状態にする。
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgSignUpFailed)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.fail(w, r, http.StatusBadRequest, i18n.MsgSignUpFailed)
		return
	}

	session, err := h.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Member sign-up failed",
			zap.String("ip_address", getClientIP(r)),
			zap.Error(err),
		)
		h.failErr(w, r, err, i18n.MsgLoginRequired, i18n.MsgSignUpFailed)
		return
	}

	if session.AccessToken != "" {
		h.identity.SetSessionCookies(w, session)
	}
	h.logger.Info("Member sign-up successful", zap.String("user_id", session.User.ID))
	writeJSON(w, http.StatusOK, OkEmpty())
}

// SignOut 提供元セッションを失効させ、Cookie を掃除する
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if c, err := r.Cookie(identity.AccessCookie); err == nil && c.Value != "" {
		if err := h.identity.SignOut(ctx, c.Value); err != nil {
			// 失効操作の失敗はログのみ。Cookie は必ず消す。
			h.logger.Warn("Provider sign-out failed", zap.Error(err))
		}
	}
	h.identity.ClearSessionCookies(w)
	writeJSON(w, http.StatusOK, OkEmpty())
}
