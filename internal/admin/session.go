// Package admin は共有シークレットによる管理者セッションを実装する。
// 会員の認証基盤とは完全に独立しており、管理者は会員アカウントを必要としない。
package admin

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"suggestbox/internal/domain"
)

const (
	// CookieName 管理者セッション Cookie
	CookieName = "suggestion_admin"
	// cookieMaxAge 24時間
	cookieMaxAge = 60 * 60 * 24
	// tokenSalt は固定のドメイン分離子。秘密ではなく、暗号強度も持たない。
	// シークレットをローテーションすると全セッションが即時無効になる。
	tokenSalt = "suggestion_admin_salt"
)

// Sessions 管理者セッションの発行・検証
type Sessions struct {
	secret func() string
	secure bool
}

// NewSessions 管理者セッションを生成する。secret はチェック毎に呼ばれるため、
// プロセス稼働中にシークレットを差し替えると既存 Cookie は次のリクエストで失効する。
func NewSessions(secret func() string, secure bool) *Sessions {
	return &Sessions{secret: secret, secure: secure}
}

// expectedToken は現在のシークレットから導出されるトークン。
// シークレット未設定なら空文字（= 全操作 fail closed）。
func (s *Sessions) expectedToken() string {
	secret := strings.TrimSpace(s.secret())
	if secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(secret + tokenSalt))
	return hex.EncodeToString(sum[:])
}

// Verify 入力パスワードを設定済みシークレットと定数時間で比較する
func (s *Sessions) Verify(password string) bool {
	secret := strings.TrimSpace(s.secret())
	if secret == "" {
		return false
	}
	input := strings.TrimSpace(password)
	return subtle.ConstantTimeCompare([]byte(input), []byte(secret)) == 1
}

// OpenSession 管理者 Cookie を発行する
func (s *Sessions) OpenSession(w http.ResponseWriter) error {
	token := s.expectedToken()
	if token == "" {
		return domain.ErrConfig
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// CloseSession 管理者 Cookie を削除する
func (s *Sessions) CloseSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// IsAdmin Cookie が存在し、かつ現在期待されるトークンと一致するか。
// トークンはキャッシュせず毎回計算する。
func (s *Sessions) IsAdmin(r *http.Request) bool {
	expected := s.expectedToken()
	if expected == "" {
		return false
	}
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(expected)) == 1
}
