package api

import (
	"net/http"

	"github.com/anoixa/album-chat/api/common"
	"github.com/anoixa/album-chat/api/middleware"
	"github.com/anoixa/album-chat/internal/auth"
	"github.com/gin-gonic/gin"
)

type updateAccountRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Password *string `json:"password" binding:"omitempty,min=8,max=128"`
}

// GetMeHandlerFunc 当前用户信息
func (h *LoginHandler) GetMeHandlerFunc(c *gin.Context) {
	user, err := h.loginService.GetAccount(c.Request.Context(), c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, user)
}

// UpdateMeHandlerFunc 修改当前用户
func (h *LoginHandler) UpdateMeHandlerFunc(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.loginService.UpdateAccount(c.Request.Context(), c.GetUint(middleware.ContextUserIDKey), auth.UpdateInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, user)
}

// DeleteMeHandlerFunc 删除当前用户并注销会话
func (h *LoginHandler) DeleteMeHandlerFunc(c *gin.Context) {
	err := h.loginService.DeleteAccount(c.Request.Context(), c.GetUint(middleware.ContextUserIDKey), middleware.CurrentClaims(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.setAccessCookie(c, "", -1)
	common.RespondSuccessMessage(c, "Account deleted", nil)
}
