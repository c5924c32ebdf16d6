package chat_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/dto/respond"
	"stranger_chat_server/internal/model"
	"stranger_chat_server/internal/service/chat"
	"stranger_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContactOps 记录调用参数的假好友服务
type fakeContactOps struct {
	calls [][2]uint64
	err   error
}

func (f *fakeContactOps) AddFriendDuringMatch(userId, peerId uint64) error {
	f.calls = append(f.calls, [2]uint64{userId, peerId})
	return f.err
}

// fakeMessageOps 假私信服务，回显收到的内容
type fakeMessageOps struct {
	sendErr   error
	readCalls [][2]uint64
}

func (f *fakeMessageOps) SendDirectMessage(sendId uint64, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &respond.MessageRespond{
		Uuid:      "msg-1",
		SendId:    sendId,
		ReceiveId: req.ReceiveId,
		Type:      req.Type,
		Content:   req.Content,
	}, nil
}

func (f *fakeMessageOps) MarkAsRead(userId, peerId uint64) error {
	f.readCalls = append(f.readCalls, [2]uint64{userId, peerId})
	return nil
}

func newDispatcher(f *chatFixture, contactOps chat.ContactOps, messageOps chat.MessageOps) *chat.Dispatcher {
	return chat.NewDispatcher(f.repos, f.presence, f.rooms, f.matcher, f.relay, contactOps, messageOps)
}

func TestDispatchStartSearch(t *testing.T) {
	f := newChatFixture(t)
	d := newDispatcher(f, &fakeContactOps{}, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	alice := f.connect(aliceId)

	d.Dispatch(aliceId, []byte(`{"event":"start_search"}`))

	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventStatus, env.Event)
}

func TestDispatchMalformedEnvelope(t *testing.T) {
	f := newChatFixture(t)
	d := newDispatcher(f, &fakeContactOps{}, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	alice := f.connect(aliceId)

	d.Dispatch(aliceId, []byte(`not json`))

	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventError, env.Event)
}

func TestDispatchUnknownEvent(t *testing.T) {
	f := newChatFixture(t)
	d := newDispatcher(f, &fakeContactOps{}, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	alice := f.connect(aliceId)

	d.Dispatch(aliceId, []byte(`{"event":"teleport"}`))

	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventError, env.Event)
}

func TestDispatchEndChatIsSilentlyIdempotent(t *testing.T) {
	f := newChatFixture(t)
	d := newDispatcher(f, &fakeContactOps{}, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)
	pairUsers(t, f, alice, bob)

	d.Dispatch(aliceId, []byte(`{"event":"end_chat"}`))
	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventStrangerDisconnected, env.Event)

	// 双方重复结束都静默成功
	d.Dispatch(aliceId, []byte(`{"event":"end_chat"}`))
	d.Dispatch(bobId, []byte(`{"event":"end_chat"}`))
	assertNoEvent(t, alice)
	assertNoEvent(t, bob)
}

func TestDispatchSkipStranger(t *testing.T) {
	f := newChatFixture(t)
	d := newDispatcher(f, &fakeContactOps{}, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)
	pairUsers(t, f, alice, bob)

	d.Dispatch(aliceId, []byte(`{"event":"skip_stranger"}`))

	// 对端收到被跳过的通知，跳过者重新排队
	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventStrangerSkipped, env.Event)
	env = recvEvent(t, alice)
	assert.Equal(t, chat.EventStatus, env.Event)

	entry, err := f.repos.Queue.FindWaitingByUser(aliceId)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusWaiting, entry.Status)
}

func TestDispatchSignalRoutesToPeer(t *testing.T) {
	f := newChatFixture(t)
	d := newDispatcher(f, &fakeContactOps{}, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)
	roomId := pairUsers(t, f, alice, bob)

	raw := fmt.Sprintf(`{"event":"webrtc_offer","data":{"room":%q,"payload":{"type":"offer"}}}`, roomId)
	d.Dispatch(aliceId, []byte(raw))

	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventWebrtcOffer, env.Event)
	assertNoEvent(t, alice)
}

func TestDispatchSignalWithoutRoom(t *testing.T) {
	f := newChatFixture(t)
	d := newDispatcher(f, &fakeContactOps{}, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	alice := f.connect(aliceId)

	d.Dispatch(aliceId, []byte(`{"event":"webrtc_offer","data":{"payload":{}}}`))

	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventError, env.Event)
}

func TestDispatchAddFriendNotifiesBothSides(t *testing.T) {
	f := newChatFixture(t)
	contactOps := &fakeContactOps{}
	d := newDispatcher(f, contactOps, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice", Nickname: "小红"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob", Nickname: "小明"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)
	roomId := pairUsers(t, f, alice, bob)

	raw := fmt.Sprintf(`{"event":"send_friend_request_during_chat","data":{"room":%q}}`, roomId)
	d.Dispatch(aliceId, []byte(raw))

	// 服务端从匹配记录解析对端身份
	require.Len(t, contactOps.calls, 1)
	assert.Equal(t, [2]uint64{aliceId, bobId}, contactOps.calls[0])

	aliceEnv := recvEvent(t, alice)
	bobEnv := recvEvent(t, bob)
	assert.Equal(t, chat.EventFriendAdded, aliceEnv.Event)
	assert.Equal(t, chat.EventFriendAdded, bobEnv.Event)

	var notify struct {
		FriendId uint64 `json:"friend_id"`
		Nickname string `json:"nickname"`
	}
	require.NoError(t, json.Unmarshal(aliceEnv.Data, &notify))
	assert.Equal(t, bobId, notify.FriendId)
	assert.Equal(t, "小明", notify.Nickname)
}

func TestDispatchAddFriendBusinessError(t *testing.T) {
	f := newChatFixture(t)
	contactOps := &fakeContactOps{err: errorx.New(errorx.CodeApplyExist, "无法添加该用户为好友")}
	d := newDispatcher(f, contactOps, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)
	roomId := pairUsers(t, f, alice, bob)

	raw := fmt.Sprintf(`{"event":"send_friend_request_during_chat","data":{"room":%q}}`, roomId)
	d.Dispatch(aliceId, []byte(raw))

	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventError, env.Event)

	var errData struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &errData))
	assert.Equal(t, "无法添加该用户为好友", errData.Message)
	assertNoEvent(t, bob)
}

func TestDispatchSendMessage(t *testing.T) {
	f := newChatFixture(t)
	d := newDispatcher(f, &fakeContactOps{}, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice", Nickname: "小红"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)

	raw := fmt.Sprintf(`{"event":"send_message","data":{"receive_id":%d,"content":"在吗"}}`, bobId)
	d.Dispatch(aliceId, []byte(raw))

	// 接收方先收到消息本体，再收到角标提醒
	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventReceiveMessage, env.Event)
	var msg struct {
		Content string `json:"content"`
		SendId  uint64 `json:"send_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "在吗", msg.Content)
	assert.Equal(t, aliceId, msg.SendId)

	env = recvEvent(t, bob)
	assert.Equal(t, chat.EventMessageNotification, env.Event)
	var notify struct {
		FromId   uint64 `json:"from_id"`
		Nickname string `json:"nickname"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &notify))
	assert.Equal(t, aliceId, notify.FromId)
	assert.Equal(t, "小红", notify.Nickname)

	// 发送方收到回显
	env = recvEvent(t, alice)
	assert.Equal(t, chat.EventReceiveMessage, env.Event)
}

func TestDispatchSendMessageToOfflineReceiver(t *testing.T) {
	f := newChatFixture(t)
	d := newDispatcher(f, &fakeContactOps{}, &fakeMessageOps{})
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)

	raw := fmt.Sprintf(`{"event":"send_message","data":{"receive_id":%d,"content":"在吗"}}`, bobId)
	d.Dispatch(aliceId, []byte(raw))

	// 只有发送方的回显，离线接收方下次拉历史消息时可见
	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventReceiveMessage, env.Event)
	assertNoEvent(t, alice)
}

func TestDispatchMarkAsRead(t *testing.T) {
	f := newChatFixture(t)
	messageOps := &fakeMessageOps{}
	d := newDispatcher(f, &fakeContactOps{}, messageOps)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	f.connect(aliceId)

	raw := fmt.Sprintf(`{"event":"mark_as_read","data":{"peer_id":%d}}`, bobId)
	d.Dispatch(aliceId, []byte(raw))

	require.Len(t, messageOps.readCalls, 1)
	assert.Equal(t, [2]uint64{aliceId, bobId}, messageOps.readCalls[0])
}
