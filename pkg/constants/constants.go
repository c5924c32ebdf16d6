package constants

const (
	CHANNEL_SIZE               = 100 // 通道大小
	CLIENT_SEND_BUFFER         = 64  // 单客户端下行缓冲
	REDIS_TIMEOUT              = 1   // redis timeout (分钟)
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天
)
