package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterMemberRoutes 会員アプリ（タイムライン＋投稿＋認証）
func (r *Router) RegisterMemberRoutes(s *SuggestionHandler, a *AuthHandler) {
	r.Handle("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		s.Timeline(w, req)
	})
	r.Handle("/api/suggestions", s.Create)

	r.HandleHandler("/login", a)
	r.HandleHandler("/login/", a)
	r.HandleHandler("/logout", a)
}

// RegisterLegacyRoutes 旧公開投稿箱。
// 末尾スラッシュ付きの来訪もここで受ける（/suggestion-box/admin はより
// 長いパターンが勝つ）。
func (r *Router) RegisterLegacyRoutes(l *LegacyHandler) {
	r.HandleHandler("/suggestion-box", l)
	r.HandleHandler("/suggestion-box/", l)
}

// RegisterAdminRoutes 管理画面
func (r *Router) RegisterAdminRoutes(ad *AdminHandler) {
	r.HandleHandler("/suggestion-box/admin", ad)
	r.HandleHandler("/suggestion-box/admin/", ad)
}
