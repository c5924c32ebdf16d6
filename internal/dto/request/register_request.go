package request

// RegisterRequest 用户注册请求
// 使用位置:
//   - internal/handler/auth_handler.go: Register
//   - internal/service/user/user_service.go: Register
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=2,max=32"`
	Password  string `json:"password" binding:"required,min=6"`
	Nickname  string `json:"nickname" binding:"required"`
	Gender    int8   `json:"gender" binding:"omitempty,oneof=0 1 2"`
	Age       int    `json:"age" binding:"omitempty,gte=0,lte=150"`
	Country   string `json:"country"`
	Interests string `json:"interests"`
}
