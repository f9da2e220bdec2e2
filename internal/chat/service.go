// Package chat 实现图片聊天的消息流程：鉴权 -> 持久化 -> 实时广播。
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/database/repo/chats"
	"github.com/anoixa/album-chat/internal/access"
	"github.com/anoixa/album-chat/internal/apperr"
	"github.com/anoixa/album-chat/utils"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// MaxMessageLength 单条消息的最大字符数
const MaxMessageLength = 5000

// Store 聊天持久化
type Store interface {
	GetChatByImageID(ctx context.Context, imageID uint) (*models.Chat, error)
	CreateChat(ctx context.Context, chat *models.Chat) error
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, chatID uint) ([]*models.Message, error)
}

// Broadcaster 把消息推送给聊天的实时订阅者
type Broadcaster interface {
	Broadcast(chatID uint, payload []byte) int
}

// Payload 实时推送的消息格式
type Payload struct {
	ID       uint   `json:"id"`
	Content  string `json:"content"`
	SentAt   string `json:"sent_at"`
	SenderID uint   `json:"sender_id"`
	ChatID   uint   `json:"chat_id"`
}

// NewPayload 由消息生成推送内容
func NewPayload(m *models.Message) Payload {
	return Payload{
		ID:       m.ID,
		Content:  m.Content,
		SentAt:   m.SentAt.UTC().Format(time.RFC3339Nano),
		SenderID: m.SenderID,
		ChatID:   m.ChatID,
	}
}

// Service 消息流程
type Service struct {
	access      *access.Engine
	store       Store
	broadcaster Broadcaster
	now         func() time.Time

	creating singleflight.Group
}

// NewService 创建消息服务
func NewService(engine *access.Engine, store Store, broadcaster Broadcaster) *Service {
	return &Service{
		access:      engine,
		store:       store,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// GetOrCreateChatForImage 获取图片的聊天，不存在时创建
// 同一图片的并发请求合并为一次创建，跨进程的竞争由唯一索引兜底并重新读取
func (s *Service) GetOrCreateChatForImage(ctx context.Context, albumID, imageID, userID uint) (*models.Chat, error) {
	if _, _, err := s.access.RequireImageAccess(ctx, albumID, imageID, userID); err != nil {
		return nil, err
	}

	// 共享的创建过程不随首个调用方取消
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.creating.Do(fmt.Sprint(imageID), func() (interface{}, error) {
		return s.getOrCreate(flightCtx, imageID)
	})
	if err != nil {
		return nil, err
	}
	chat := *v.(*models.Chat)
	return &chat, nil
}

func (s *Service) getOrCreate(ctx context.Context, imageID uint) (*models.Chat, error) {
	chat, err := s.store.GetChatByImageID(ctx, imageID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, chats.ErrChatNotFound) {
		return nil, apperr.Internal("failed to load chat", err)
	}

	chat = &models.Chat{ImageID: imageID}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Internal("failed to create chat", err)
		}
		// 其它进程先创建了，读取它
		existing, getErr := s.store.GetChatByImageID(ctx, imageID)
		if getErr != nil {
			return nil, apperr.Internal("failed to load chat after conflict", getErr)
		}
		return existing, nil
	}
	return chat, nil
}

// GetChat 获取聊天
func (s *Service) GetChat(ctx context.Context, chatID, userID uint) (*models.Chat, error) {
	chat, _, err := s.access.RequireChatAccess(ctx, chatID, userID)
	return chat, err
}

// ListMessages 按发送顺序返回聊天历史
func (s *Service) ListMessages(ctx context.Context, chatID, userID uint) ([]*models.Message, error) {
	if _, _, err := s.access.RequireChatAccess(ctx, chatID, userID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, apperr.Internal("failed to list messages", err)
	}
	return messages, nil
}

// PostMessage 通过 REST 发送消息，空内容返回 InvalidInput
func (s *Service) PostMessage(ctx context.Context, chatID, userID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.InvalidInput("Message content must not be empty")
	}
	return s.post(ctx, chatID, userID, content)
}

// PostLiveMessage 通过实时连接发送消息，空内容直接忽略并返回 nil, nil
func (s *Service) PostLiveMessage(ctx context.Context, chatID, userID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	return s.post(ctx, chatID, userID, content)
}

// post 鉴权、保存后广播，广播失败不影响已保存的消息
func (s *Service) post(ctx context.Context, chatID, userID uint, content string) (*models.Message, error) {
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, apperr.InvalidInput(fmt.Sprintf("Message content must be at most %d characters", MaxMessageLength))
	}

	if _, _, err := s.access.RequireChatAccess(ctx, chatID, userID); err != nil {
		return nil, err
	}

	message := &models.Message{
		Content:  content,
		SentAt:   s.now().UTC(),
		SenderID: userID,
		ChatID:   chatID,
	}
	if err := s.store.CreateMessage(ctx, message); err != nil {
		return nil, apperr.Internal("failed to save message", err)
	}

	s.broadcast(message)
	return message, nil
}

func (s *Service) broadcast(message *models.Message) {
	if s.broadcaster == nil {
		return
	}
	payload, err := json.Marshal(NewPayload(message))
	if err != nil {
		log.Printf("[Chat] Failed to encode message %d: %v", message.ID, err)
		return
	}
	delivered := s.broadcaster.Broadcast(message.ChatID, payload)
	utils.LogIfDevf("[Chat] Message %d delivered to %d live subscribers of chat %d", message.ID, delivered, message.ChatID)
}
