package chats

import (
	"net/http"

	"github.com/anoixa/album-chat/api/common"
	"github.com/anoixa/album-chat/api/middleware"
	"github.com/gin-gonic/gin"
)

type postMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// GetChatHandler 聊天详情
func (h *Handler) GetChatHandler(c *gin.Context) {
	chatID, ok := common.ParseID(c, "chatId")
	if !ok {
		return
	}

	chat, err := h.svc.GetChat(c.Request.Context(), chatID, c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, chat)
}

// ListMessagesHandler 按发送顺序返回聊天历史
func (h *Handler) ListMessagesHandler(c *gin.Context) {
	chatID, ok := common.ParseID(c, "chatId")
	if !ok {
		return
	}

	messages, err := h.svc.ListMessages(c.Request.Context(), chatID, c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, messages)
}

// PostMessageHandler 发送消息，保存后推送给实时订阅者
func (h *Handler) PostMessageHandler(c *gin.Context) {
	chatID, ok := common.ParseID(c, "chatId")
	if !ok {
		return
	}
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	message, err := h.svc.PostMessage(c.Request.Context(), chatID, c.GetUint(middleware.ContextUserIDKey), req.Content)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondCreated(c, message)
}
