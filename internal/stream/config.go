package stream

import (
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/stream/redis"
)

type StreamConfig struct {
	Provider    string // redis, kafka, sqs, etc
	RedisConfig *redis.RedisStreamConfig
}
