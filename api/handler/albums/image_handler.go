package albums

import (
	"net/http"

	"github.com/anoixa/album-chat/api/common"
	"github.com/anoixa/album-chat/api/middleware"
	svcAlbums "github.com/anoixa/album-chat/internal/albums"
	"github.com/gin-gonic/gin"
)

type imageRequest struct {
	Title       string  `json:"title" binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Path        string  `json:"image_path" binding:"required,max=512"`
}

func (r imageRequest) input() svcAlbums.ImageInput {
	return svcAlbums.ImageInput{
		Title:       r.Title,
		Description: r.Description,
		Path:        r.Path,
	}
}

// ListImagesHandler 列出相册图片
func (h *Handler) ListImagesHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}

	list, err := h.svc.ListImages(c.Request.Context(), albumID, c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, list)
}

// CreateImageHandler 添加图片
func (h *Handler) CreateImageHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	image, err := h.svc.CreateImage(c.Request.Context(), albumID, c.GetUint(middleware.ContextUserIDKey), req.input())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondCreated(c, image)
}

// GetImageHandler 图片详情
func (h *Handler) GetImageHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := common.ParseID(c, "imageId")
	if !ok {
		return
	}

	image, err := h.svc.GetImage(c.Request.Context(), albumID, imageID, c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, image)
}

// UpdateImageHandler 修改图片
func (h *Handler) UpdateImageHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := common.ParseID(c, "imageId")
	if !ok {
		return
	}
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	image, err := h.svc.UpdateImage(c.Request.Context(), albumID, imageID, c.GetUint(middleware.ContextUserIDKey), req.input())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, image)
}

// DeleteImageHandler 删除图片
func (h *Handler) DeleteImageHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := common.ParseID(c, "imageId")
	if !ok {
		return
	}

	if err := h.svc.DeleteImage(c.Request.Context(), albumID, imageID, c.GetUint(middleware.ContextUserIDKey)); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Image deleted successfully", nil)
}

// GetImageChatHandler 获取图片的聊天，首次访问时创建
func (h *Handler) GetImageChatHandler(c *gin.Context) {
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := common.ParseID(c, "imageId")
	if !ok {
		return
	}

	chat, err := h.chatSvc.GetOrCreateChatForImage(c.Request.Context(), albumID, imageID, c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, chat)
}
