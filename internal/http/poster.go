package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	// PosterCookie 公開投稿者の識別 Cookie
	PosterCookie = "suggestion_poster_id"
	// posterCookieMaxAge 1年
	posterCookieMaxAge = 60 * 60 * 24 * 365
)

// ensurePosterID 投稿者識別子を取得。なければ新規発行して Cookie に保存。
// 識別子は匿名投稿の表示名帰属にだけ使われる。
func ensurePosterID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if c, err := r.Cookie(PosterCookie); err == nil && c.Value != "" {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     PosterCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   posterCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
