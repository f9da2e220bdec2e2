package albums

import (
	svcAlbums "github.com/anoixa/album-chat/internal/albums"
	"github.com/anoixa/album-chat/internal/chat"
)

// Handler 相册、参与者和图片处理器
type Handler struct {
	svc     *svcAlbums.Service
	chatSvc *chat.Service
}

// NewHandler 创建新的相册处理器
func NewHandler(svc *svcAlbums.Service, chatSvc *chat.Service) *Handler {
	return &Handler{
		svc:     svc,
		chatSvc: chatSvc,
	}
}
