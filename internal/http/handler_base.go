package httpapi

import (
	"errors"
	"net/http"

	"suggestbox/internal/domain"
	"suggestbox/internal/i18n"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
)

// handlerBase 各 Handler 共通のローカライズとエラー翻訳
type handlerBase struct {
	bundle *i18n.Bundle
	logger *zap.Logger
}

// localizer Accept-Language ヘッダから Localizer を作る（既定は日本語）
func (b *handlerBase) localizer(r *http.Request) *goi18n.Localizer {
	return b.bundle.Localizer(r.Header.Get("Accept-Language"))
}

func (b *handlerBase) fail(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, status, Fail(b.bundle.Message(b.localizer(r), msgID)))
}

// failErr エラー分類をローカライズ文言へ翻訳して返す。
// unauthorizedMsg: ErrUnauthorized に使う文言（会員向けと管理者向けで異なる）。
// genericMsg: 予期しない失敗に使う文言。内部のエラー文字列は出さない。
func (b *handlerBase) failErr(w http.ResponseWriter, r *http.Request, err error, unauthorizedMsg, genericMsg string) {
	switch {
	case errors.Is(err, domain.ErrEmptyContent):
		b.fail(w, r, http.StatusBadRequest, i18n.MsgEmptyContent)
	case errors.Is(err, domain.ErrUnauthorized):
		b.fail(w, r, http.StatusUnauthorized, unauthorizedMsg)
	case errors.Is(err, domain.ErrInvalidCredentials):
		b.fail(w, r, http.StatusUnauthorized, i18n.MsgInvalidCredentials)
	case errors.Is(err, domain.ErrAlreadyRegistered):
		b.fail(w, r, http.StatusConflict, i18n.MsgAlreadyRegistered)
	case errors.Is(err, domain.ErrWeakPassword):
		b.fail(w, r, http.StatusBadRequest, i18n.MsgWeakPassword)
	case errors.Is(err, domain.ErrConfig):
		b.fail(w, r, http.StatusInternalServerError, i18n.MsgAdminNotConfigured)
	default:
		// ストア障害など。原因はログに、クライアントには一般文言のみ。
		b.logger.Error("Operation failed", zap.Error(err))
		b.fail(w, r, http.StatusInternalServerError, genericMsg)
	}
}
