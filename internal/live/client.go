package live

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrClientClosed   = errors.New("client closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// 单条入站消息的上限，超过时断开连接
const maxFrameSize = 16 * 1024

// Options 连接参数
type Options struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = 60 * time.Second
	}
	return o
}

// Client WebSocket 订阅者
// gorilla/websocket 同一时刻只允许一个写者，所有写操作都在 WritePump 中完成
type Client struct {
	id     string
	userID uint
	conn   *websocket.Conn
	opts   Options

	send   chan []byte
	mu     sync.Mutex
	closed bool
	// 关闭帧内容，在 close(send) 之前写入
	closeCode   int
	closeReason string
}

var _ Subscriber = (*Client)(nil)

// NewClient 包装已升级的连接
func NewClient(conn *websocket.Conn, userID uint, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		opts:   opts,
		send:   make(chan []byte, opts.SendBuffer),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() uint { return c.userID }

// Send 非阻塞入队，慢消费者直接返回 ErrSendBufferFull
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close 停止接收新消息，WritePump 发完队列后以 1000 关闭连接
func (c *Client) Close() {
	c.CloseWith(websocket.CloseNormalClosure, "")
}

// CloseWith 同 Close，但关闭帧使用给定的状态码和原因
// 已关闭的连接不受影响
func (c *Client) CloseWith(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		c.closeCode = code
		c.closeReason = reason
		close(c.send)
	}
}

// WritePump 把队列中的消息写到连接上，并定时发送 ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(c.closeCode, c.closeReason))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("[Live] Write to %s failed: %v", c.id, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump 读取客户端消息直到连接断开，每条文本消息交给 onMessage 处理
func (c *Client) ReadPump(onMessage func(data []byte)) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[Live] Read from %s failed: %v", c.id, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
		onMessage(data)
	}
}

// ClosePolicyViolation 以 1008 关闭连接
func ClosePolicyViolation(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = conn.Close()
}
