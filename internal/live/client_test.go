package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startClientServer 启动一个升级连接并把 Client 交给 ready 的测试服务器
func startClientServer(t *testing.T, opts Options) (*websocket.Conn, <-chan *Client) {
	t.Helper()
	ready := make(chan *Client, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, 7, opts)
		go client.WritePump()
		ready <- client
		client.ReadPump(func([]byte) {})
		client.Close()
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, ready
}

func TestClient_SendDelivers(t *testing.T) {
	conn, ready := startClientServer(t, Options{})
	client := <-ready
	assert.Equal(t, uint(7), client.UserID())
	assert.NotEmpty(t, client.ID())

	require.NoError(t, client.Send([]byte(`{"content":"hi"}`)))
	require.NoError(t, client.Send([]byte(`{"content":"again"}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"content":"hi"}`, string(data))

	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"content":"again"}`, string(data))
}

func TestClient_SendAfterClose(t *testing.T) {
	conn, ready := startClientServer(t, Options{})
	client := <-ready

	client.Close()
	client.Close()
	assert.ErrorIs(t, client.Send([]byte("x")), ErrClientClosed)

	// 关闭后对端收到正常关闭帧
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestClient_CloseWithPolicyViolation(t *testing.T) {
	conn, ready := startClientServer(t, Options{})
	client := <-ready

	r := NewRegistry()
	r.Subscribe(3, client)
	assert.Equal(t, 1, r.EvictUser(3, client.UserID(), "access revoked"))
	assert.ErrorIs(t, client.Send([]byte("x")), ErrClientClosed)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Equal(t, "access revoked", closeErr.Text)
}

func TestClient_SendBufferFull(t *testing.T) {
	// 不启动 WritePump，队列不会被消费
	client := &Client{id: "slow", send: make(chan []byte, 1)}

	require.NoError(t, client.Send([]byte("1")))
	assert.ErrorIs(t, client.Send([]byte("2")), ErrSendBufferFull)
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, 64, opts.SendBuffer)
	assert.Equal(t, 10*time.Second, opts.WriteTimeout)
	assert.Equal(t, 60*time.Second, opts.PongTimeout)

	opts = Options{SendBuffer: 8}.withDefaults()
	assert.Equal(t, 8, opts.SendBuffer)
}
