package admin

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestSessions(secret string) *Sessions {
	return NewSessions(func() string { return secret }, false)
}

func TestVerify(t *testing.T) {
	s := newTestSessions("topsecret")

	if !s.Verify("topsecret") {
		t.Error("correct password should verify")
	}
	if !s.Verify("  topsecret  ") {
		t.Error("trimmed input should verify")
	}
	if s.Verify("wrong") {
		t.Error("wrong password should not verify")
	}
	if s.Verify("") {
		t.Error("empty password should not verify")
	}
}

func TestVerifyFailsClosedWithoutSecret(t *testing.T) {
	s := newTestSessions("")
	if s.Verify("anything") {
		t.Error("unset secret must deny every password")
	}
	if s.Verify("") {
		t.Error("unset secret must deny the empty password too")
	}
}

func TestOpenSessionCookie(t *testing.T) {
	s := newTestSessions("topsecret")
	w := httptest.NewRecorder()
	if err := s.OpenSession(w); err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("cookie name = %q, want %q", c.Name, CookieName)
	}
	sum := sha256.Sum256([]byte("topsecret" + tokenSalt))
	if c.Value != hex.EncodeToString(sum[:]) {
		t.Error("cookie value should be the derived token")
	}
	if !c.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Error("cookie must be SameSite=Lax")
	}
	if c.MaxAge != 86400 {
		t.Errorf("cookie MaxAge = %d, want 86400", c.MaxAge)
	}
	if c.Path != "/" {
		t.Errorf("cookie Path = %q, want /", c.Path)
	}
}

func TestOpenSessionWithoutSecret(t *testing.T) {
	s := newTestSessions("")
	if err := s.OpenSession(httptest.NewRecorder()); err == nil {
		t.Error("OpenSession must fail when the secret is unset")
	}
}

func TestIsAdmin(t *testing.T) {
	s := newTestSessions("topsecret")

	w := httptest.NewRecorder()
	if err := s.OpenSession(w); err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	cookie := w.Result().Cookies()[0]

	r := httptest.NewRequest(http.MethodGet, "/suggestion-box/admin", nil)
	r.AddCookie(cookie)
	if !s.IsAdmin(r) {
		t.Error("request with the issued cookie should be admin")
	}

	bare := httptest.NewRequest(http.MethodGet, "/suggestion-box/admin", nil)
	if s.IsAdmin(bare) {
		t.Error("request without cookie should not be admin")
	}

	forged := httptest.NewRequest(http.MethodGet, "/suggestion-box/admin", nil)
	forged.AddCookie(&http.Cookie{Name: CookieName, Value: "deadbeef"})
	if s.IsAdmin(forged) {
		t.Error("request with a forged cookie should not be admin")
	}
}

// シークレットのローテーションで既存 Cookie が即時失効すること
func TestSecretRotationInvalidatesSessions(t *testing.T) {
	secret := "first"
	s := NewSessions(func() string { return secret }, false)

	w := httptest.NewRecorder()
	if err := s.OpenSession(w); err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	cookie := w.Result().Cookies()[0]

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)
	if !s.IsAdmin(r) {
		t.Fatal("cookie should be valid before rotation")
	}

	secret = "second"
	if s.IsAdmin(r) {
		t.Error("cookie issued under the old secret must be rejected")
	}

	secret = ""
	if s.IsAdmin(r) {
		t.Error("unset secret must reject every cookie")
	}
}

func TestCloseSessionDeletesCookie(t *testing.T) {
	s := newTestSessions("topsecret")
	w := httptest.NewRecorder()
	s.CloseSession(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Error("CloseSession should expire the cookie")
	}
}
