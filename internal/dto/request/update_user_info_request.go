package request

// UpdateUserInfoRequest 更新用户资料与匹配偏好请求
// 使用位置:
//   - internal/handler/user_handler.go: UpdateUserInfo
type UpdateUserInfoRequest struct {
	Nickname   string `json:"nickname"`
	Avatar     string `json:"avatar"`
	Email      string `json:"email"`
	Gender     int8   `json:"gender" binding:"omitempty,oneof=0 1 2"`
	Age        int    `json:"age" binding:"omitempty,gte=0,lte=150"`
	Country    string `json:"country"`
	Interests  string `json:"interests"`
	PrefGender int8   `json:"pref_gender" binding:"omitempty,oneof=0 1 2"`
	PrefAgeMin int    `json:"pref_age_min" binding:"omitempty,gte=0,lte=150"`
	PrefAgeMax int    `json:"pref_age_max" binding:"omitempty,gte=0,lte=150"`
	// PrefCountries 偏好国家代码，逗号分隔，空表示不限
	PrefCountries string `json:"pref_countries" binding:"omitempty,max=255"`
}
