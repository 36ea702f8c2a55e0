// Package i18n はユーザー向けメッセージの辞書を持つ。
// 既定言語は日本語。メッセージ ID が見つからない場合は英語にフォールバックし、
// それも無ければ ID をそのまま返す。
package i18n

import (
	"embed"
	"encoding/json"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

// Bundle 読み込み済みメッセージ辞書
type Bundle struct {
	bundle *goi18n.Bundle
}

// NewBundle 埋め込みのメッセージファイルを全て読み込む
func NewBundle() (*Bundle, error) {
	b := goi18n.NewBundle(language.Japanese)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if _, err := b.LoadMessageFileFS(localeFS, e.Name()); err != nil {
			return nil, err
		}
	}
	return &Bundle{bundle: b}, nil
}

// Localizer 言語タグや Accept-Language ヘッダから Localizer を生成する
func (b *Bundle) Localizer(langPrefs ...string) *goi18n.Localizer {
	return goi18n.NewLocalizer(b.bundle, langPrefs...)
}

// Message メッセージ ID を解決する
func (b *Bundle) Message(loc *goi18n.Localizer, msgID string) string {
	msg, err := loc.Localize(&goi18n.LocalizeConfig{MessageID: msgID})
	if err == nil {
		return msg
	}
	english := goi18n.NewLocalizer(b.bundle, language.English.String())
	if fallback, ferr := english.Localize(&goi18n.LocalizeConfig{MessageID: msgID}); ferr == nil {
		return fallback
	}
	return msgID
}

// メッセージ ID 一覧。辞書ファイルのキーと一致させること。
const (
	MsgEmptyContent       = "EmptyContent"
	MsgLoginRequired      = "LoginRequired"
	MsgAdminLoginRequired = "AdminLoginRequired"
	MsgPostFailed         = "PostFailed"
	MsgDeleteFailed       = "DeleteFailed"
	MsgResponseSaveFailed = "ResponseSaveFailed"
	MsgPasswordRequired   = "PasswordRequired"
	MsgPasswordIncorrect  = "PasswordIncorrect"
	MsgAdminNotConfigured = "AdminNotConfigured"
	MsgInvalidCredentials = "InvalidCredentials"
	MsgAlreadyRegistered  = "AlreadyRegistered"
	MsgWeakPassword       = "WeakPassword"
	MsgSignUpFailed       = "SignUpFailed"
	MsgSignInFailed       = "SignInFailed"
	MsgOperationFailed    = "OperationFailed"
)
