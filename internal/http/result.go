package httpapi

// Result サーバー操作の応答封筒。
// 成功は {"success":true}（必要なら result 付き）、
// 予期された失敗は {"error":"<ローカライズ済み文言>"}。
type Result[T any] struct {
	Success bool   `json:"success,omitempty"`
	Result  T      `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Ok[T any](result T) Result[T] {
	return Result[T]{Success: true, Result: result}
}

// OkEmpty {"success":true} のみ
func OkEmpty() Result[any] {
	return Result[any]{Success: true}
}

func Fail(message string) Result[any] {
	return Result[any]{Error: message}
}
