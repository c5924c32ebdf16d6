// Package user 用户业务逻辑
// 注册、登录、令牌刷新、资料与匹配偏好管理
package user

import (
	"encoding/json"
	"strconv"
	"time"

	"stranger_chat_server/internal/dao/mysql/repository"
	myredis "stranger_chat_server/internal/dao/redis"
	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/dto/respond"
	"stranger_chat_server/internal/model"
	"stranger_chat_server/pkg/constants"
	"stranger_chat_server/pkg/errorx"
	"stranger_chat_server/pkg/util/jwt"

	"go.uber.org/zap"
)

type userService struct {
	repos *repository.Repositories
}

// NewUserService 构造函数
func NewUserService(repos *repository.Repositories) *userService {
	return &userService{repos: repos}
}

func userInfoCacheKey(userId uint64) string {
	return "user_info:" + strconv.FormatUint(userId, 10)
}

// Register 用户注册
// 注册成功直接下发令牌，无需再登录一次
func (u *userService) Register(req request.RegisterRequest) (*respond.RegisterRespond, error) {
	if _, err := u.repos.User.FindByUsername(req.Username); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "用户名已被占用")
	} else if !errorx.IsNotFound(err) {
		return nil, errorx.ErrServerBusy
	}

	user := &model.UserInfo{
		Username:    req.Username,
		Nickname:    req.Nickname,
		Gender:      req.Gender,
		Age:         req.Age,
		Country:     req.Country,
		Interests:   req.Interests,
		RawPassword: req.Password, // BeforeSave Hook 负责加密
		Status:      0,
	}
	if err := u.repos.User.Create(user); err != nil {
		zap.L().Error("创建用户失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	accessToken, refreshToken, err := issueTokens(uint64(user.ID))
	if err != nil {
		return nil, errorx.ErrServerBusy
	}

	return &respond.RegisterRespond{
		Id:           uint64(user.ID),
		Username:     user.Username,
		Nickname:     user.Nickname,
		Avatar:       user.Avatar,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Login 密码登录
func (u *userService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := u.repos.User.FindByUsername(req.Username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrUserNotExist
		}
		return nil, errorx.ErrServerBusy
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码错误")
	}
	if user.Status != 0 {
		return nil, errorx.New(errorx.CodeUnauthorized, "账号已被禁用")
	}

	return u.buildLoginRespond(user)
}

// RefreshToken 用刷新令牌换取新令牌对
func (u *userService) RefreshToken(refreshToken string) (*respond.LoginRespond, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil || claims.Subject != "refresh_token" {
		return nil, errorx.New(errorx.CodeUnauthorized, "刷新令牌无效")
	}
	userId, err := claims.NumericUserID()
	if err != nil {
		return nil, errorx.New(errorx.CodeUnauthorized, "刷新令牌无效")
	}
	user, err := u.repos.User.FindById(userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrUserNotExist
		}
		return nil, errorx.ErrServerBusy
	}
	return u.buildLoginRespond(user)
}

func (u *userService) buildLoginRespond(user *model.UserInfo) (*respond.LoginRespond, error) {
	accessToken, refreshToken, err := issueTokens(uint64(user.ID))
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	return &respond.LoginRespond{
		Id:           uint64(user.ID),
		Username:     user.Username,
		Nickname:     user.Nickname,
		Avatar:       user.Avatar,
		Email:        user.Email,
		Gender:       user.Gender,
		Age:          user.Age,
		Country:      user.Country,
		CreatedAt:    user.CreatedAt.Format("2006-01-02 15:04:05"),
		Status:       user.Status,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetUserInfo 获取用户信息（cache-aside）
func (u *userService) GetUserInfo(userId uint64) (*respond.GetUserInfoRespond, error) {
	cacheKey := userInfoCacheKey(userId)
	if cached, err := myredis.GetKey(cacheKey); err == nil && cached != "" {
		var rsp respond.GetUserInfoRespond
		if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
			return &rsp, nil
		}
	}

	user, err := u.repos.User.FindById(userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrUserNotExist
		}
		return nil, errorx.ErrServerBusy
	}

	rsp := &respond.GetUserInfoRespond{
		Id:            uint64(user.ID),
		Username:      user.Username,
		Nickname:      user.Nickname,
		Avatar:        user.Avatar,
		Email:         user.Email,
		Gender:        user.Gender,
		Age:           user.Age,
		Country:       user.Country,
		Interests:     user.Interests,
		PrefGender:    user.PrefGender,
		PrefAgeMin:    user.PrefAgeMin,
		PrefAgeMax:    user.PrefAgeMax,
		PrefCountries: user.PrefCountries,
		IsOnline:      user.IsOnline,
		CreatedAt:     user.CreatedAt.Format("2006-01-02 15:04:05"),
		Status:        user.Status,
	}

	if rspBytes, err := json.Marshal(rsp); err == nil {
		myredis.SubmitCacheTask(func() {
			_ = myredis.SetKeyEx(cacheKey, string(rspBytes), time.Minute*constants.REDIS_TIMEOUT)
		})
	}
	return rsp, nil
}

// UpdateUserInfo 更新用户资料与匹配偏好
func (u *userService) UpdateUserInfo(userId uint64, req request.UpdateUserInfoRequest) error {
	if req.PrefAgeMin != 0 && req.PrefAgeMax != 0 && req.PrefAgeMin > req.PrefAgeMax {
		return errorx.ErrInvalidParam
	}
	user, err := u.repos.User.FindById(userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrUserNotExist
		}
		return errorx.ErrServerBusy
	}

	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	user.Gender = req.Gender
	user.Age = req.Age
	user.Country = req.Country
	user.Interests = req.Interests
	user.PrefGender = req.PrefGender
	user.PrefAgeMin = req.PrefAgeMin
	user.PrefAgeMax = req.PrefAgeMax
	user.PrefCountries = req.PrefCountries

	if err := u.repos.User.UpdateUserInfo(user); err != nil {
		zap.L().Error("更新用户信息失败", zap.Error(err))
		return errorx.ErrServerBusy
	}

	myredis.SubmitCacheTask(func() {
		_ = myredis.DelKeyIfExists(userInfoCacheKey(userId))
	})
	return nil
}

// issueTokens 生成访问令牌和刷新令牌
func issueTokens(userId uint64) (string, string, error) {
	accessToken, err := jwt.GenerateAccessToken(userId)
	if err != nil {
		zap.L().Error("生成访问令牌失败", zap.Error(err))
		return "", "", err
	}
	refreshToken, _, err := jwt.GenerateRefreshToken(userId)
	if err != nil {
		zap.L().Error("生成刷新令牌失败", zap.Error(err))
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
