// Package chat 实现陌生人匹配与信令转发的核心服务层
// kafka_broker.go
// 核心职责：Kafka 模式下的事件代理实现
// 上行事件先落 Kafka 再消费，事件流可回放，适合多实例部署演进
package chat

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"
)

// kafkaEnvelope Kafka 消息体
// 原始事件字节加上发送者标识
type kafkaEnvelope struct {
	UserId uint64          `json:"user_id"`
	Raw    json.RawMessage `json:"raw"`
}

// KafkaBroker Kafka 事件代理
type KafkaBroker struct {
	client     *KafkaClient
	presence   *Presence
	dispatcher *Dispatcher

	stop chan struct{}
}

// NewKafkaBroker 创建 KafkaBroker 实例（依赖注入）
func NewKafkaBroker(client *KafkaClient, presence *Presence, dispatcher *Dispatcher) *KafkaBroker {
	return &KafkaBroker{
		client:     client,
		presence:   presence,
		dispatcher: dispatcher,
		stop:       make(chan struct{}),
	}
}

// Publish 发布上行事件到 Kafka
// key 为用户 id，同一用户的事件保证有序消费
func (b *KafkaBroker) Publish(ctx context.Context, userId uint64, msg []byte) error {
	value, err := json.Marshal(kafkaEnvelope{UserId: userId, Raw: msg})
	if err != nil {
		return err
	}
	key := []byte(strconv.FormatUint(userId, 10))
	return b.client.SendMessage(ctx, key, value)
}

// RegisterClient 注册客户端连接
// 连接登记是本节点状态，不经过 Kafka
func (b *KafkaBroker) RegisterClient(client *UserConn) {
	if old := b.presence.Register(client); old != nil {
		zap.L().Info("同一用户重复连接，关闭旧连接", zap.Uint64("user_id", client.UserId))
		_ = old.Conn.Close()
	}
	zap.L().Info("用户上线", zap.Uint64("user_id", client.UserId))
}

// UnregisterClient 注销客户端连接
// 在 ws 读协程上执行，Matcher 内部互斥锁保证与消费协程的事件处理串行
func (b *KafkaBroker) UnregisterClient(client *UserConn) {
	b.dispatcher.HandleDisconnect(client)
	zap.L().Info("用户下线", zap.Uint64("user_id", client.UserId))
}

// GetClient 获取指定用户的连接
func (b *KafkaBroker) GetClient(userId uint64) *UserConn {
	return b.presence.Get(userId)
}

// PushToUser 向在线用户推送一条下行事件
// 只能命中本节点登记的连接，跨节点投递需要对端节点自行消费
func (b *KafkaBroker) PushToUser(userId uint64, event string, data interface{}) {
	pushEvent(b.presence.Get(userId), event, data)
}

// Start 启动消费循环
// 后台死循环从 Kafka 拉取事件并交给 Dispatcher 路由
func (b *KafkaBroker) Start() {
	for {
		select {
		case <-b.stop:
			return
		default:
		}

		message, err := b.client.Consumer.ReadMessage(ctx)
		if err != nil {
			select {
			case <-b.stop:
				return
			default:
			}
			zap.L().Error("kafka read", zap.Error(err))
			continue
		}

		var envelope kafkaEnvelope
		if err := json.Unmarshal(message.Value, &envelope); err != nil {
			zap.L().Error("kafka envelope decode", zap.Error(err))
			continue
		}
		b.dispatcher.Dispatch(envelope.UserId, envelope.Raw)
	}
}

// Close 关闭代理资源
func (b *KafkaBroker) Close() {
	close(b.stop)
}
