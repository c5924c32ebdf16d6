package respond

// GetUserInfoRespond 获取用户信息响应
// 使用位置:
//   - internal/service/user/user_service.go: GetUserInfo
type GetUserInfoRespond struct {
	Id            uint64 `json:"id"`
	Username      string `json:"username"`
	Nickname      string `json:"nickname"`
	Avatar        string `json:"avatar"`
	Email         string `json:"email"`
	Gender        int8   `json:"gender"`
	Age           int    `json:"age"`
	Country       string `json:"country"`
	Interests     string `json:"interests"`
	PrefGender    int8   `json:"pref_gender"`
	PrefAgeMin    int    `json:"pref_age_min"`
	PrefAgeMax    int    `json:"pref_age_max"`
	PrefCountries string `json:"pref_countries"`
	IsOnline      int8   `json:"is_online"`
	CreatedAt     string `json:"created_at"`
	Status        int8   `json:"status"`
}
