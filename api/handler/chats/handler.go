package chats

import (
	"net/http"

	"github.com/anoixa/album-chat/api/middleware"
	"github.com/anoixa/album-chat/internal/chat"
	"github.com/anoixa/album-chat/internal/live"
	"github.com/gorilla/websocket"
)

// Handler 聊天、消息与实时连接处理器
type Handler struct {
	svc      *chat.Service
	registry *live.Registry
	authn    middleware.Authenticator
	opts     live.Options
	upgrader websocket.Upgrader
}

// NewHandler 创建聊天处理器，allowedOrigins 为空时只接受不带 Origin 的连接
func NewHandler(svc *chat.Service, registry *live.Registry, authn middleware.Authenticator, opts live.Options, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &Handler{
		svc:      svc,
		registry: registry,
		authn:    authn,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}
