package albums

import (
	"net/http"

	"github.com/anoixa/album-chat/api/common"
	"github.com/anoixa/album-chat/api/middleware"
	"github.com/gin-gonic/gin"
)

type albumRequest struct {
	Title string `json:"title" binding:"required,max=100"`
}

// ListAlbumsHandler 列出当前用户拥有或参与的相册
func (h *Handler) ListAlbumsHandler(c *gin.Context) {
	views, err := h.svc.ListAlbums(c.Request.Context(), c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, views)
}

// CreateAlbumHandler 创建相册
func (h *Handler) CreateAlbumHandler(c *gin.Context) {
	var req albumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.svc.CreateAlbum(c.Request.Context(), c.GetUint(middleware.ContextUserIDKey), req.Title)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondCreated(c, album)
}

// GetAlbumHandler 相册详情
func (h *Handler) GetAlbumHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}

	view, err := h.svc.GetAlbum(c.Request.Context(), albumID, c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, view)
}

// UpdateAlbumHandler 修改相册标题
func (h *Handler) UpdateAlbumHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req albumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.svc.UpdateAlbumTitle(c.Request.Context(), albumID, c.GetUint(middleware.ContextUserIDKey), req.Title)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, album)
}

// DeleteAlbumHandler 删除相册
func (h *Handler) DeleteAlbumHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteAlbum(c.Request.Context(), albumID, c.GetUint(middleware.ContextUserIDKey)); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Album deleted successfully", nil)
}
