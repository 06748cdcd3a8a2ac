package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/UWFms/docling-chat-bot/internal/adapter/utils"
	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/data/redisStore"
	"github.com/UWFms/docling-chat-bot/internal/domain/jobModel"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context, settings *config.Settings) *RedisMessageStore {
	backing := redisStore.GetRedisStore(ctx, settings, config.RedisMessageStore)
	if backing == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  backing,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)

	isFound, err := s.store.Exists(ctx, chatId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "error", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", id)
	if !s.ValidateChatId(ctx, id) {
		err := errors.New("invalid chat id")
		log.Error("Failed validation before saving", "error", err)
		return err
	}
	return s.saveChatId(ctx, id, conversation)
}

func (s *RedisMessageStore) saveChatId(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", id)
	err := s.store.ListPush(ctx, id, marshallJson(conversation, s.logger))
	if err != nil {
		log.Error("Error saving chat", "error", err)
		return err
	}
	log.Debug("Saved chat successfully")
	return nil
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", id)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, id); err != nil && !s.store.IsNil(err) {
		log.Error("Error clearing chat", "error", err)
	}
	return s.saveChatId(ctx, id, jobModel.JobPayload{})
}

// GetMessageHistory returns up to the five most recent conversation
// turns, newest first. The empty payload InitNewChat seeds the list
// with is not a turn and is filtered out.
func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)

	res, err := s.store.ListGet5PastMessage(ctx, chatId)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	turns := make([]string, 0, len(res))
	for _, raw := range res {
		var payload jobModel.JobPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			continue
		}
		if payload.Question == "" && payload.Answer == "" {
			continue
		}
		turns = append(turns, raw)
	}
	return utils.ReverseStringArray(turns), nil
}

func marshallJson(payload jobModel.JobPayload, logger *logger_i.Logger) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error marshalling payload", "error", err)
	}
	return data
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
