// Package identity は外部認証基盤（GoTrue 互換 REST API）のクライアント。
// セッションは提供元発行のトークンをそのまま Cookie に保持し、
// リクエスト毎に提供元へ問い合わせて検証する（ローカル状態なし）。
package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"suggestbox/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// AccessCookie / RefreshCookie 提供元セッションを運ぶ Cookie
	AccessCookie  = "sb-access-token"
	RefreshCookie = "sb-refresh-token"

	// refreshCookieMaxAge リフレッシュトークンの Cookie 寿命
	refreshCookieMaxAge = 60 * 60 * 24 * 30
)

// User 認証済み会員
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session 提供元が発行するセッション
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// gotrueError 提供元のエラー応答（複数の形がある）
type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *gotrueError) text() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	default:
		return e.ErrorCode
	}
}

// Client GoTrue 互換 API クライアント
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
	secure     bool
}

// NewClient identity クライアントを生成する。anonKey は公開キー。
func NewClient(baseURL, anonKey string, secure bool, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", anonKey)

	return &Client{httpClient: client, logger: logger, secure: secure}
}

// mapProviderError 提供元の英語メッセージを内部のエラー分類へ写像する。
// 未知のメッセージは素の文言のまま返す。
func mapProviderError(msg string) error {
	switch msg {
	case "User already registered":
		return domain.ErrAlreadyRegistered
	case "Password should be at least 6 characters":
		return domain.ErrWeakPassword
	case "Invalid login credentials":
		return domain.ErrInvalidCredentials
	case "":
		return fmt.Errorf("identity provider error")
	default:
		return fmt.Errorf("identity provider: %s", msg)
	}
}

// SignUp 新規会員登録
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	var apiErr gotrueError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		SetError(&apiErr).
		// Content-Type ヘッダを欠く応答でも JSON として復号する
		ForceContentType("application/json").
		Post("/auth/v1/signup")
	if err != nil {
		return nil, fmt.Errorf("failed to call identity provider: %w", err)
	}
	if resp.IsError() {
		c.logger.Warn("Sign-up rejected by identity provider",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("provider_message", apiErr.text()),
		)
		return nil, mapProviderError(apiErr.text())
	}
	return &session, nil
}

// SignIn パスワードでサインインし、セッションを得る
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	var apiErr gotrueError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		SetError(&apiErr).
		ForceContentType("application/json").
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("failed to call identity provider: %w", err)
	}
	if resp.IsError() {
		c.logger.Warn("Sign-in rejected by identity provider",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("provider_message", apiErr.text()),
		)
		return nil, mapProviderError(apiErr.text())
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("identity provider returned an empty session")
	}
	return &session, nil
}

// RefreshSession リフレッシュトークンでセッションを更新する
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	var apiErr gotrueError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&session).
		SetError(&apiErr).
		ForceContentType("application/json").
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("failed to call identity provider: %w", err)
	}
	if resp.IsError() {
		return nil, mapProviderError(apiErr.text())
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("identity provider returned an empty session")
	}
	return &session, nil
}

// SignOut 提供元セッションを失効させる。トークンが既に無効でもエラーにしない。
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/auth/v1/logout")
	if err != nil {
		return fmt.Errorf("failed to call identity provider: %w", err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusUnauthorized {
		return fmt.Errorf("identity provider logout failed: status %d", resp.StatusCode())
	}
	return nil
}

// UserFromToken アクセストークンから会員を解決する
func (c *Client) UserFromToken(ctx context.Context, accessToken string) (*User, error) {
	var user User
	var apiErr gotrueError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&user).
		SetError(&apiErr).
		ForceContentType("application/json").
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("failed to call identity provider: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, nil
	}
	if resp.IsError() {
		return nil, mapProviderError(apiErr.text())
	}
	if user.ID == "" {
		return nil, nil
	}
	return &user, nil
}

// CurrentUser リクエストの Cookie から現在の会員を解決する。
// Cookie の存在だけでは信用せず、毎回提供元へ問い合わせる。
// アクセストークンが失効していればリフレッシュを試み、
// 新しいセッション Cookie をレスポンスへ書き戻す（失効 Cookie の伝播）。
// 未認証は (nil, nil)。
func (c *Client) CurrentUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*User, error) {
	accessToken := cookieValue(r, AccessCookie)
	refreshToken := cookieValue(r, RefreshCookie)
	if accessToken == "" && refreshToken == "" {
		return nil, nil
	}

	if accessToken != "" {
		user, err := c.UserFromToken(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}

	if refreshToken == "" {
		// 失効アクセストークンだけが残っている。放置すると以後の
		// リクエストが毎回無駄な提供元問い合わせを繰り返す。
		c.ClearSessionCookies(w)
		return nil, nil
	}

	session, err := c.RefreshSession(ctx, refreshToken)
	if err != nil {
		// 失効したリフレッシュトークン。Cookie を掃除して未認証扱い。
		c.ClearSessionCookies(w)
		return nil, nil
	}
	c.SetSessionCookies(w, session)
	return &session.User, nil
}

// SetSessionCookies セッションを Cookie へ書き込む
func (c *Client) SetSessionCookies(w http.ResponseWriter, session *Session) {
	accessMaxAge := session.ExpiresIn
	if accessMaxAge <= 0 {
		accessMaxAge = 3600
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   accessMaxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    session.RefreshToken,
		Path:     "/",
		MaxAge:   refreshCookieMaxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookies セッション Cookie を削除する
func (c *Client) ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
