package chats

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/anoixa/album-chat/api/middleware"
	"github.com/anoixa/album-chat/internal/apperr"
	"github.com/anoixa/album-chat/internal/live"
	"github.com/anoixa/album-chat/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const liveMessageTimeout = 10 * time.Second

type liveFrame struct {
	Content *string `json:"content"`
}

// LiveHandler 聊天实时连接
// 会话和聊天权限在升级前校验，校验失败时完成升级后立即以 1008 关闭
func (h *Handler) LiveHandler(c *gin.Context) {
	chatID, userID, reason := h.authorizeLive(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Live] Upgrade failed for chat %d: %v", chatID, err)
		return
	}
	if reason != "" {
		utils.LogIfDevf("[Live] Refused connection to chat %d: %s", chatID, reason)
		live.ClosePolicyViolation(conn, reason)
		return
	}

	client := live.NewClient(conn, userID, h.opts)
	h.registry.Subscribe(chatID, client)
	utils.SafeGoNamed("live-write-"+client.ID(), client.WritePump)

	// 订阅之前发生的踢出作用不到这个连接，订阅后再校验一次
	if reason := h.recheckLive(chatID, userID); reason != "" {
		h.registry.Unsubscribe(chatID, client)
		client.CloseWith(websocket.ClosePolicyViolation, reason)
	} else {
		utils.LogIfDevf("[Live] User %d joined chat %d as %s", userID, chatID, client.ID())
	}

	client.ReadPump(func(data []byte) {
		if !h.handleFrame(chatID, userID, data) {
			h.registry.Unsubscribe(chatID, client)
			client.CloseWith(websocket.ClosePolicyViolation, "Access to this chat was revoked")
		}
	})

	h.registry.Unsubscribe(chatID, client)
	client.Close()
	utils.LogIfDevf("[Live] User %d left chat %d", userID, chatID)
}

// authorizeLive 返回拒绝原因，为空表示允许
func (h *Handler) authorizeLive(c *gin.Context) (uint, uint, string) {
	id, err := strconv.ParseUint(c.Param("chatId"), 10, 32)
	if err != nil || id == 0 {
		return 0, 0, "Invalid chat id"
	}
	chatID := uint(id)

	if err := middleware.Resolve(c, h.authn); err != nil {
		return chatID, 0, apperr.MessageOf(err)
	}
	userID := c.GetUint(middleware.ContextUserIDKey)

	if _, err := h.svc.GetChat(c.Request.Context(), chatID, userID); err != nil {
		return chatID, userID, apperr.MessageOf(err)
	}
	return chatID, userID, ""
}

func (h *Handler) recheckLive(chatID, userID uint) string {
	ctx, cancel := context.WithTimeout(context.Background(), liveMessageTimeout)
	defer cancel()
	if _, err := h.svc.GetChat(ctx, chatID, userID); err != nil {
		return apperr.MessageOf(err)
	}
	return ""
}

// handleFrame 处理一条客户端消息，返回 false 表示应断开连接
func (h *Handler) handleFrame(chatID, userID uint, data []byte) bool {
	var frame liveFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Content == nil {
		utils.LogIfDevf("[Live] Ignoring malformed frame in chat %d: %s", chatID, utils.Truncate(utils.SanitizeLogMessage(string(data)), 80))
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), liveMessageTimeout)
	defer cancel()

	_, err := h.svc.PostLiveMessage(ctx, chatID, userID, *frame.Content)
	switch {
	case err == nil:
		return true
	case apperr.Is(err, apperr.CodeForbidden), apperr.Is(err, apperr.CodeNotFound):
		return false
	case utils.IsContextDone(err):
		log.Printf("[Live] Timed out saving message from user %d in chat %d", userID, chatID)
		return true
	default:
		log.Printf("[Live] Dropped message from user %d in chat %d: %v", userID, chatID, err)
		return true
	}
}

