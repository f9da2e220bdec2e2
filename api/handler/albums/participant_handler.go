package albums

import (
	"net/http"

	"github.com/anoixa/album-chat/api/common"
	"github.com/anoixa/album-chat/api/middleware"
	"github.com/gin-gonic/gin"
)

type addParticipantRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// ListParticipantsHandler 列出参与者
func (h *Handler) ListParticipantsHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}

	participants, err := h.svc.ListParticipants(c.Request.Context(), albumID, c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, participants)
}

// AddParticipantHandler 共享相册
func (h *Handler) AddParticipantHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	participant, err := h.svc.AddParticipant(c.Request.Context(), albumID, c.GetUint(middleware.ContextUserIDKey), req.UserID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondCreated(c, participant)
}

// RemoveParticipantHandler 移除参与者或退出相册
func (h *Handler) RemoveParticipantHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	participantID, ok := common.ParseID(c, "userId")
	if !ok {
		return
	}

	if err := h.svc.RemoveParticipant(c.Request.Context(), albumID, c.GetUint(middleware.ContextUserIDKey), participantID); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Participant removed", nil)
}
