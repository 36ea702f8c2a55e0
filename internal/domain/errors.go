package domain

import "errors"

// 错误分类。Handler 层用 errors.Is 翻译成本地化消息；
// 内部错误文本不会泄露给客户端。
var (
	// ErrUnauthorized 调用者未通过授权检查。不区分"行不存在"。
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials 账号或密码错误（会员登录 / 管理员密码）
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyRegistered 注册时邮箱已存在
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrWeakPassword 密码不满足最小长度（6文字）
	ErrWeakPassword = errors.New("weak password")
	// ErrEmptyContent 投稿内容 trim 后为空
	ErrEmptyContent = errors.New("empty content")
	// ErrNotFound 行不存在
	ErrNotFound = errors.New("not found")
	// ErrConfig 必需的环境变量未设置（仅管理员路径可见）
	ErrConfig = errors.New("missing configuration")
)
