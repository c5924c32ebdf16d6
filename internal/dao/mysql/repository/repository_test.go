package repository_test

import (
	"testing"
	"time"

	"stranger_chat_server/internal/dao/mysql/repository"
	"stranger_chat_server/internal/model"
	"stranger_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建内存数据库并完成建表
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&model.UserInfo{},
		&model.QueueEntry{},
		&model.ActiveMatch{},
		&model.UserContact{},
		&model.FriendRequest{},
		&model.Message{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(setupTestDB(t))
}

func createUser(t *testing.T, repos *repository.Repositories, username string) *model.UserInfo {
	t.Helper()
	user := &model.UserInfo{
		Username: username,
		Nickname: username,
		Password: "hashed",
	}
	require.NoError(t, repos.User.Create(user))
	return user
}

func TestUserRepositoryOnlineFlags(t *testing.T) {
	repos := setupRepos(t)
	user := createUser(t, repos, "alice")
	userId := uint64(user.ID)

	require.NoError(t, repos.User.SetOnline(userId, "conn-1"))
	got, err := repos.User.FindById(userId)
	require.NoError(t, err)
	assert.Equal(t, int8(model.UserOnline), got.IsOnline)
	assert.Equal(t, "conn-1", got.ConnId)

	require.NoError(t, repos.User.SetOffline(userId))
	got, err = repos.User.FindById(userId)
	require.NoError(t, err)
	assert.Equal(t, int8(model.UserOffline), got.IsOnline)

	require.NoError(t, repos.User.SetOnline(userId, "conn-2"))
	require.NoError(t, repos.User.SetAllOffline())
	got, err = repos.User.FindById(userId)
	require.NoError(t, err)
	assert.Equal(t, int8(model.UserOffline), got.IsOnline)
}

func TestUserRepositoryFindByIdsEmpty(t *testing.T) {
	repos := setupRepos(t)
	users, err := repos.User.FindByIds(nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepositoryNotFound(t *testing.T) {
	repos := setupRepos(t)
	_, err := repos.User.FindById(404)
	require.Error(t, err)
	assert.True(t, errorx.IsNotFound(err))
}

func TestQueueLifecycle(t *testing.T) {
	repos := setupRepos(t)

	_, err := repos.Queue.FindWaitingByUser(1)
	assert.True(t, errorx.IsNotFound(err))

	now := time.Now()
	_, err = repos.Queue.CreateWaiting(1, now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = repos.Queue.CreateWaiting(2, now)
	require.NoError(t, err)

	// 按入队时间升序
	entries, err := repos.Queue.ListWaiting()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(1), entries[0].UserId)
	assert.Equal(t, uint64(2), entries[1].UserId)

	require.NoError(t, repos.Queue.MarkMatched([]uint64{1, 2}))
	entries, err = repos.Queue.ListWaiting()
	require.NoError(t, err)
	assert.Empty(t, entries)

	entry, err := repos.Queue.CreateWaiting(1, now)
	require.NoError(t, err)
	assert.Equal(t, int8(model.QueueStatusWaiting), entry.Status)

	// 取消是幂等的
	require.NoError(t, repos.Queue.CancelWaiting(1))
	require.NoError(t, repos.Queue.CancelWaiting(1))
	_, err = repos.Queue.FindWaitingByUser(1)
	assert.True(t, errorx.IsNotFound(err))
}

func TestQueueCancelForUsers(t *testing.T) {
	repos := setupRepos(t)
	now := time.Now()
	_, err := repos.Queue.CreateWaiting(1, now)
	require.NoError(t, err)
	_, err = repos.Queue.CreateWaiting(2, now)
	require.NoError(t, err)
	require.NoError(t, repos.Queue.MarkMatched([]uint64{1}))

	// 等待中和已匹配的记录都被作废
	require.NoError(t, repos.Queue.CancelForUsers([]uint64{1, 2}))
	_, err = repos.Queue.FindWaitingByUser(2)
	assert.True(t, errorx.IsNotFound(err))

	entries, err := repos.Queue.ListWaiting()
	require.NoError(t, err)
	assert.Empty(t, entries)

	// 空列表与重复取消都是无害的
	require.NoError(t, repos.Queue.CancelForUsers(nil))
	require.NoError(t, repos.Queue.CancelForUsers([]uint64{1, 2}))
}

func TestQueueListWaitingBefore(t *testing.T) {
	repos := setupRepos(t)
	now := time.Now()
	_, err := repos.Queue.CreateWaiting(1, now.Add(-11*time.Minute))
	require.NoError(t, err)
	_, err = repos.Queue.CreateWaiting(2, now)
	require.NoError(t, err)

	expired, err := repos.Queue.ListWaitingBefore(now.Add(-10 * time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, uint64(1), expired[0].UserId)
}

func TestMatchEndIsIdempotent(t *testing.T) {
	repos := setupRepos(t)
	match := &model.ActiveMatch{
		RoomId:   "match_1_2_token",
		User1Id:  1,
		User2Id:  2,
		Status:   model.MatchStatusActive,
		PairedAt: time.Now(),
	}
	require.NoError(t, repos.Match.Create(match))

	got, err := repos.Match.FindActiveByUser(2)
	require.NoError(t, err)
	assert.Equal(t, "match_1_2_token", got.RoomId)

	require.NoError(t, repos.Match.End("match_1_2_token", 1, time.Now()))
	require.NoError(t, repos.Match.End("match_1_2_token", 2, time.Now()))

	_, err = repos.Match.FindActiveByRoom("match_1_2_token")
	assert.True(t, errorx.IsNotFound(err))
	_, err = repos.Match.FindActiveByUser(1)
	assert.True(t, errorx.IsNotFound(err))

	// 历史记录保留第一次结束的发起者
	ended, err := repos.Match.FindByRoom("match_1_2_token")
	require.NoError(t, err)
	assert.Equal(t, int8(model.MatchStatusEnded), ended.Status)
	assert.Equal(t, uint64(1), ended.EndedBy)
}

func TestMatchOtherUser(t *testing.T) {
	match := &model.ActiveMatch{User1Id: 3, User2Id: 7}
	assert.Equal(t, uint64(7), match.OtherUser(3))
	assert.Equal(t, uint64(3), match.OtherUser(7))
	assert.Equal(t, uint64(0), match.OtherUser(99))
	assert.True(t, match.Involves(3))
	assert.False(t, match.Involves(99))
}

func TestContactRepository(t *testing.T) {
	repos := setupRepos(t)
	require.NoError(t, repos.Contact.Create(&model.UserContact{UserId: 1, ContactId: 2, Status: model.ContactStatusNormal}))
	require.NoError(t, repos.Contact.Create(&model.UserContact{UserId: 1, ContactId: 3, Status: model.ContactStatusBlack}))

	friends, err := repos.Contact.FindFriends(1)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, uint64(2), friends[0].ContactId)

	require.NoError(t, repos.Contact.UpdateStatus(1, 3, model.ContactStatusNormal))
	friends, err = repos.Contact.FindFriends(1)
	require.NoError(t, err)
	assert.Len(t, friends, 2)

	require.NoError(t, repos.Contact.SoftDelete(1, 2))
	friends, err = repos.Contact.FindFriends(1)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, uint64(3), friends[0].ContactId)
}

func TestFriendRequestRepository(t *testing.T) {
	repos := setupRepos(t)
	req := &model.FriendRequest{
		ApplicantId: 1,
		TargetId:    2,
		Status:      model.ApplyStatusPending,
		Message:     "你好",
		LastApplyAt: time.Now(),
	}
	require.NoError(t, repos.FriendRequest.Create(req))

	pending, err := repos.FriendRequest.FindByTargetIdPending(2)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint64(1), pending[0].ApplicantId)

	req.Status = model.ApplyStatusAgree
	require.NoError(t, repos.FriendRequest.Update(req))

	pending, err = repos.FriendRequest.FindByTargetIdPending(2)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := repos.FriendRequest.FindByApplicantIdAndTargetId(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int8(model.ApplyStatusAgree), got.Status)
}

func TestMessageRepository(t *testing.T) {
	repos := setupRepos(t)
	base := time.Now().Add(-time.Hour)
	msgs := []*model.Message{
		{Uuid: "m1", SendId: 1, ReceiveId: 2, Type: 1, Content: "hi", Status: model.MessageStatusUnread, SendAt: base},
		{Uuid: "m2", SendId: 2, ReceiveId: 1, Type: 1, Content: "hello", Status: model.MessageStatusUnread, SendAt: base.Add(time.Minute)},
		{Uuid: "m3", SendId: 1, ReceiveId: 3, Type: 1, Content: "other", Status: model.MessageStatusUnread, SendAt: base},
	}
	for _, msg := range msgs {
		require.NoError(t, repos.Message.Create(msg))
	}

	// 双向查询，按发送时间升序
	list, err := repos.Message.FindByUserIds(1, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "m1", list[0].Uuid)
	assert.Equal(t, "m2", list[1].Uuid)

	require.NoError(t, repos.Message.MarkRead(2, 1))
	list, err = repos.Message.FindByUserIds(1, 2)
	require.NoError(t, err)
	for _, msg := range list {
		if msg.SendId == 2 {
			assert.Equal(t, int8(model.MessageStatusRead), msg.Status)
		} else {
			assert.Equal(t, int8(model.MessageStatusUnread), msg.Status)
		}
	}
}

func TestTransactionRollback(t *testing.T) {
	repos := setupRepos(t)
	err := repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Contact.Create(&model.UserContact{UserId: 1, ContactId: 2, Status: model.ContactStatusNormal}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	_, err = repos.Contact.FindByUserIdAndContactId(1, 2)
	assert.True(t, errorx.IsNotFound(err))
}
