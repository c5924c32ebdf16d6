// Package chat 实现陌生人匹配与信令转发的核心服务层
// kafka_client.go
// 核心职责：Kafka 基础设施管理
// 1. 封装 Kafka 底层连接 (Writer/Reader)
// 2. 提供事件写入接口 (SendMessage)
// 3. 纯技术组件，不包含匹配业务逻辑
package chat

import (
	"context"
	"time"

	myconfig "stranger_chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaClient Kafka 客户端结构
type KafkaClient struct {
	Producer *kafka.Writer // 生产者：负责写入事件
	Consumer *kafka.Reader // 消费者：负责读取事件

	hostPort string
	topic    string
}

// NewKafkaClient 创建 Kafka 客户端实例
func NewKafkaClient(hostPort, topic string) *KafkaClient {
	return &KafkaClient{hostPort: hostPort, topic: topic}
}

// KafkaInit 初始化 Kafka 客户端
// Hash balancer 按 key 分区，同一用户的事件始终落在同一分区，保证顺序
func (k *KafkaClient) KafkaInit() {
	kafkaConfig := myconfig.GetConfig().KafkaConfig
	k.Producer = &kafka.Writer{
		Addr:                   kafka.TCP(k.hostPort),
		Topic:                  k.topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           kafkaConfig.Timeout * time.Second,
		RequiredAcks:           kafka.RequireNone,
		AllowAutoTopicCreation: false,
	}
	k.Consumer = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{k.hostPort},
		Topic:          k.topic,
		CommitInterval: kafkaConfig.Timeout * time.Second,
		GroupID:        "stranger_chat",
		StartOffset:    kafka.LastOffset,
	})
}

// KafkaClose 关闭 Kafka 资源
func (k *KafkaClient) KafkaClose() {
	if k.Producer != nil {
		if err := k.Producer.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}
	if k.Consumer != nil {
		if err := k.Consumer.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}
}

// SendMessage 写入一条事件
// key 为用户 id，配合 Hash balancer 保证同一用户事件有序
func (k *KafkaClient) SendMessage(ctx context.Context, key, value []byte) error {
	return k.Producer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}
