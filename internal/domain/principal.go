package domain

// Principal 每个请求解析出的调用者身份。
// Member 和 Admin 相互独立：管理员不必是会员，会员也不必是管理员。
type Principal struct {
	MemberID string // 空 = 未登录会员
	Admin    bool
}

// Anonymous 未认证调用者
var Anonymous = Principal{}

func (p Principal) IsMember() bool {
	return p.MemberID != ""
}
