package redis

import "time"

type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	MaxRetries    int
	RequestStream string
	ReplyStream   string
	Group         string
	ConsumerName  string
	// Block is how long one XREADGROUP waits for entries. Zero means 2s;
	// negative means do not block.
	Block time.Duration
}

func NewRedisStreamConfig(redisAddr string, redisPassword string, requestStream string, replyStream string, group string, consumerName string) *RedisStreamConfig {
	return &RedisStreamConfig{
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		MaxRetries:    5,
		RequestStream: requestStream,
		ReplyStream:   replyStream,
		Group:         group,
		ConsumerName:  consumerName,
	}
}
