package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/tasks"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	payloadField = "payload"

	// replyTimeout bounds the reply and ACK once the worker context is gone.
	replyTimeout = 5 * time.Second
)

type Consumer struct {
	client        *redis.Client
	requestStream string
	replyStream   string
	groupID       string
	consumerName  string
	block         time.Duration
	generator     tasks.ModuleTaskGenerator
	logger        *zerolog.Logger
}

func NewConsumer(client *redis.Client, cfg *RedisStreamConfig, generator tasks.ModuleTaskGenerator, logger *zerolog.Logger) *Consumer {
	block := cfg.Block
	if block == 0 {
		block = 2 * time.Second
	}

	return &Consumer{
		client:        client,
		requestStream: cfg.RequestStream,
		replyStream:   cfg.ReplyStream,
		groupID:       cfg.Group,
		consumerName:  cfg.ConsumerName,
		block:         block,
		generator:     generator,
		logger:        logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.requestStream, c.groupID, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.requestStream).
		Str("reply_stream", c.replyStream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	// Entries delivered to this consumer before a restart and never ACKed.
	if err := c.recoverPending(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error().Err(err).Msg("Failed to read pending entries")
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
		}
	}
}

func (c *Consumer) Stop() error {
	return c.client.Close()
}

// poll reads at most one new entry and handles it. It returns the number of
// entries processed.
func (c *Consumer) poll(ctx context.Context) (int, error) {
	processed, _, err := c.read(ctx, ">", c.block)
	return processed, err
}

// recoverPending handles entries already delivered to this consumer but
// still in the pending list, oldest first.
func (c *Consumer) recoverPending(ctx context.Context) error {
	startID := "0"
	recovered := 0
	for {
		processed, lastID, err := c.read(ctx, startID, -1)
		if err != nil {
			return err
		}
		if processed == 0 {
			break
		}
		recovered += processed
		startID = lastID
	}

	if recovered > 0 {
		c.logger.Info().Int("count", recovered).Msg("Recovered pending entries")
	}
	return nil
}

func (c *Consumer) read(ctx context.Context, id string, block time.Duration) (int, string, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.groupID,
		Consumer: c.consumerName,
		Streams:  []string{c.requestStream, id},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// timeout, no message -> loop again
			return 0, "", nil
		}
		return 0, "", err
	}

	processed := 0
	lastID := ""
	for _, s := range streams {
		for _, msg := range s.Messages {
			c.process(ctx, msg)
			processed++
			lastID = msg.ID
		}
	}
	return processed, lastID, nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	// The reply and ACK must land even when ctx is cancelled mid-generation.
	replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyTimeout)
	defer cancel()
	defer c.ack(replyCtx, msg.ID)

	// Undecodable entries still get a reply and an ACK.
	payload, ok := msg.Values[payloadField].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.reply(replyCtx, models.StreamReply{
			RequestID: msg.ID,
			Error:     (&tasks.ValidationError{Field: payloadField, Reason: "is required"}).Error(),
		})
		return
	}

	request, input, err := decodeRequest([]byte(payload))
	if request.RequestID == "" {
		request.RequestID = msg.ID
	}
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.reply(replyCtx, models.StreamReply{RequestID: request.RequestID, Error: err.Error()})
		return
	}

	out, err := c.generator.Generate(ctx, input)
	if err != nil {
		c.logger.Warn().Err(err).Str("id", msg.ID).Str("request_id", request.RequestID).Msg("Generation failed")
		c.reply(replyCtx, models.StreamReply{RequestID: request.RequestID, Error: err.Error()})
		return
	}

	c.logger.Info().
		Str("id", msg.ID).
		Str("request_id", request.RequestID).
		Int("message_length", len(out.IntroductoryMessage)).
		Msg("Generation complete")

	c.reply(replyCtx, models.StreamReply{RequestID: request.RequestID, IntroductoryMessage: out.IntroductoryMessage})
}

// decodeRequest returns whatever request_id it could read even when the
// module content is invalid.
func decodeRequest(payload []byte) (models.StreamRequest, models.GenerateModuleTasksInput, error) {
	var request models.StreamRequest
	var envelope struct {
		RequestID string `json:"request_id"`
	}
	_ = json.Unmarshal(payload, &envelope)
	request.RequestID = envelope.RequestID

	input, err := tasks.DecodeInput(payload)
	if err != nil {
		return request, input, err
	}
	request.ModuleContent = input.ModuleContent
	return request, input, nil
}

func (c *Consumer) reply(ctx context.Context, reply models.StreamReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", reply.RequestID).Msg("Failed to encode reply")
		return
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.replyStream,
		Values: map[string]any{payloadField: string(data)},
	}).Err(); err != nil {
		c.logger.Error().Err(err).Str("request_id", reply.RequestID).Msg("Failed to publish reply")
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.requestStream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}
