package respond

// LoginRespond 用户登录响应
// 使用位置:
//   - internal/service/user/user_service.go: Login
type LoginRespond struct {
	Id           uint64 `json:"id"`
	Username     string `json:"username"`
	Nickname     string `json:"nickname"`
	Avatar       string `json:"avatar"`
	Email        string `json:"email"`
	Gender       int8   `json:"gender"`
	Age          int    `json:"age"`
	Country      string `json:"country"`
	CreatedAt    string `json:"created_at"`
	Status       int8   `json:"status"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
