package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"suggestbox/internal/admin"
	"suggestbox/internal/domain"
	"suggestbox/internal/identity"

	"go.uber.org/zap"
)

// publicPaths 会員認証なしで通すパス
var publicPaths = []string{"/login", "/login/signup"}

// Guard リクエスト毎にパスを分類し、必要な principal を解決する。
// - 公開パス: そのまま通す
// - /suggestion-box 配下: 公開（管理操作は各ハンドラが管理者認可を行う。
//   会員チェックをここでしないのは、会員アカウントを持たない管理者を
//   締め出さないため）
// - それ以外: 会員必須。未認証は /login?redirect=<元パス> へ。
// Cookie の存在だけでは信用せず、毎回 identity 提供元で検証する。
// 検証中に提供元が再発行した Cookie はそのままクライアントへ返す。
type Guard struct {
	identity *identity.Client
	admin    *admin.Sessions
	logger   *zap.Logger
}

func NewGuard(identityClient *identity.Client, adminSessions *admin.Sessions, logger *zap.Logger) *Guard {
	return &Guard{identity: identityClient, admin: adminSessions, logger: logger}
}

// Middleware ガードを Handler チェーンに差し込む
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if isStaticAsset(path) {
			next.ServeHTTP(w, r)
			return
		}

		isAdmin := g.admin.IsAdmin(r)

		if strings.HasPrefix(path, "/suggestion-box") {
			// 旧公開アプリと管理画面。管理者認可は操作側で行う。
			p := domain.Principal{Admin: isAdmin}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
			return
		}

		if isPublicPath(path) {
			// ログイン済み会員が /login に来たらトップへ
			if path == "/login" && r.Method == http.MethodGet {
				user, err := g.identity.CurrentUser(r.Context(), w, r)
				if err != nil {
					g.logger.Warn("Member session check failed", zap.Error(err))
				}
				if user != nil {
					http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
					return
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		user, err := g.identity.CurrentUser(r.Context(), w, r)
		if err != nil {
			g.logger.Warn("Member session check failed", zap.Error(err))
		}
		if user == nil {
			loginURL := "/login?redirect=" + url.QueryEscape(path)
			http.Redirect(w, r, loginURL, http.StatusTemporaryRedirect)
			return
		}

		p := domain.Principal{MemberID: user.ID, Admin: isAdmin}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isStaticAsset(path string) bool {
	if path == "/favicon.ico" || strings.HasPrefix(path, "/static/") {
		return true
	}
	switch {
	case strings.HasSuffix(path, ".svg"),
		strings.HasSuffix(path, ".png"),
		strings.HasSuffix(path, ".jpg"),
		strings.HasSuffix(path, ".jpeg"),
		strings.HasSuffix(path, ".gif"),
		strings.HasSuffix(path, ".webp"):
		return true
	}
	return false
}
