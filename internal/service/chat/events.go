// Package chat 实现陌生人匹配与信令转发的核心服务层
// events.go
// 事件名定义与下行事件编码
package chat

import (
	"encoding/json"

	"stranger_chat_server/internal/dto/respond"

	"go.uber.org/zap"
)

// 上行事件
const (
	EventStartSearch       = "start_search"
	EventSkipStranger      = "skip_stranger"
	EventEndChat           = "end_chat"
	EventWebrtcOffer       = "webrtc_offer"
	EventWebrtcAnswer      = "webrtc_answer"
	EventWebrtcIce         = "webrtc_ice_candidate"
	EventSendFriendRequest = "send_friend_request_during_chat"
	EventSendMessage       = "send_message"
	EventMarkAsRead        = "mark_as_read"
)

// 下行事件
const (
	EventStatus                = "status"
	EventMatchConfirmed        = "match_confirmed"
	EventSearchTimeout         = "search_timeout"
	EventStrangerSkipped       = "stranger_skipped"
	EventStrangerDisconnected  = "stranger_disconnected"
	EventError                 = "error"
	EventFriendAdded           = "friend_added_notification"
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventReceiveMessage        = "receive_message"
	EventMessageNotification   = "message_notification"
)

// encodeEvent 编码下行事件信封
func encodeEvent(event string, data interface{}) []byte {
	jsonMessage, err := json.Marshal(respond.ChatEventRespond{Event: event, Data: data})
	if err != nil {
		zap.L().Error("编码下行事件失败", zap.String("event", event), zap.Error(err))
		return nil
	}
	return jsonMessage
}

// pushEvent 向客户端推送下行事件
// client 为 nil（用户离线）时静默丢弃
func pushEvent(client *UserConn, event string, data interface{}) {
	if client == nil {
		return
	}
	if jsonMessage := encodeEvent(event, data); jsonMessage != nil {
		client.Send(jsonMessage)
	}
}
