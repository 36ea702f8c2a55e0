package authz

import "suggestbox/internal/domain"

// Operation 授权矩阵中的操作
type Operation string

const (
	OpCreateSuggestion Operation = "create_suggestion"  // members' app
	OpListTimeline     Operation = "list_timeline"      // members' app
	OpListLegacy       Operation = "list_legacy"        // /suggestion-box（公开）
	OpCreateLegacy     Operation = "create_legacy"      // /suggestion-box（公开投稿）
	OpDeleteSuggestion Operation = "delete_suggestion"  // admin only
	OpSetResponse      Operation = "set_response"       // admin only
	OpListDashboard    Operation = "list_dashboard"     // admin only
)

// Authorize (principal, operation) → allow/deny 的唯一判定点。
// Admin 与 Member 正交：Admin 身份单独满足所有 Admin 门限操作。
func Authorize(p domain.Principal, op Operation) bool {
	switch op {
	case OpListLegacy, OpCreateLegacy:
		return true
	case OpCreateSuggestion, OpListTimeline:
		return p.IsMember() || p.Admin
	case OpDeleteSuggestion, OpSetResponse, OpListDashboard:
		return p.Admin
	default:
		return false
	}
}
