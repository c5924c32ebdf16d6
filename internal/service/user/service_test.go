package user_test

import (
	"os"
	"testing"

	"stranger_chat_server/internal/dao/mysql/repository"
	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/model"
	"stranger_chat_server/internal/service"
	"stranger_chat_server/internal/service/user"
	"stranger_chat_server/pkg/errorx"
	"stranger_chat_server/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	jwt.Init("test-secret-at-least-32-characters!!", 15, 168)
	os.Exit(m.Run())
}

func setupService(t *testing.T) (*repository.Repositories, service.UserService) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.UserInfo{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	repos := repository.NewRepositories(db)
	return repos, user.NewUserService(repos)
}

func TestRegisterAndLogin(t *testing.T) {
	repos, svc := setupService(t)

	rsp, err := svc.Register(request.RegisterRequest{
		Username: "alice",
		Password: "secret123",
		Nickname: "小红",
		Gender:   2,
		Age:      25,
		Country:  "CN",
	})
	require.NoError(t, err)
	assert.NotZero(t, rsp.Id)
	assert.NotEmpty(t, rsp.AccessToken)
	assert.NotEmpty(t, rsp.RefreshToken)

	// 密码只存哈希
	stored, err := repos.User.FindById(rsp.Id)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, stored.CheckPassword("secret123"))

	loginRsp, err := svc.Login(request.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, rsp.Id, loginRsp.Id)
	assert.Equal(t, "小红", loginRsp.Nickname)

	claims, err := jwt.ParseToken(loginRsp.AccessToken)
	require.NoError(t, err)
	userId, err := claims.NumericUserID()
	require.NoError(t, err)
	assert.Equal(t, rsp.Id, userId)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, svc := setupService(t)

	_, err := svc.Register(request.RegisterRequest{Username: "alice", Password: "secret123", Nickname: "a"})
	require.NoError(t, err)

	_, err = svc.Register(request.RegisterRequest{Username: "alice", Password: "secret456", Nickname: "b"})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))
}

func TestLoginFailures(t *testing.T) {
	repos, svc := setupService(t)

	_, err := svc.Login(request.LoginRequest{Username: "ghost", Password: "secret123"})
	assert.ErrorIs(t, err, errorx.ErrUserNotExist)

	_, err = svc.Register(request.RegisterRequest{Username: "alice", Password: "secret123", Nickname: "a"})
	require.NoError(t, err)

	_, err = svc.Login(request.LoginRequest{Username: "alice", Password: "wrong-pass"})
	assert.Equal(t, errorx.CodeInvalidPassword, errorx.GetCode(err))

	// 禁用账号不能登录
	banned, err := repos.User.FindByUsername("alice")
	require.NoError(t, err)
	banned.Status = 1
	require.NoError(t, repos.User.UpdateUserInfo(banned))
	_, err = svc.Login(request.LoginRequest{Username: "alice", Password: "secret123"})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestRefreshToken(t *testing.T) {
	_, svc := setupService(t)

	rsp, err := svc.Register(request.RegisterRequest{Username: "alice", Password: "secret123", Nickname: "a"})
	require.NoError(t, err)

	newRsp, err := svc.RefreshToken(rsp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, rsp.Id, newRsp.Id)
	assert.NotEmpty(t, newRsp.AccessToken)

	// 访问令牌不能当刷新令牌用
	_, err = svc.RefreshToken(newRsp.AccessToken)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	_, err = svc.RefreshToken("not-a-token")
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}
