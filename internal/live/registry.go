// Package live 维护聊天的实时订阅者，并向其广播新消息。
package live

import (
	"errors"
	"log"
	"strconv"

	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Subscriber 实时连接，同一 ID 在一个聊天中只注册一次
type Subscriber interface {
	ID() string
	Send(payload []byte) error
}

// 可以指定关闭帧的订阅者
type codeCloser interface {
	CloseWith(code int, reason string)
}

// 绑定用户的订阅者
type userBound interface {
	UserID() uint
}

// closeSubscriber 关闭订阅者，不支持关闭的订阅者忽略
func closeSubscriber(sub Subscriber, code int, reason string) {
	switch c := sub.(type) {
	case codeCloser:
		c.CloseWith(code, reason)
	case interface{ Close() }:
		c.Close()
	}
}

// Registry chatID -> 订阅者列表
// 列表按加入顺序保存且写时复制，广播拿到的快照不会被并发修改
type Registry struct {
	sessions cmap.ConcurrentMap[string, []Subscriber]
}

// NewRegistry 创建空的订阅表
func NewRegistry() *Registry {
	return &Registry{sessions: cmap.New[[]Subscriber]()}
}

func chatKey(chatID uint) string {
	return strconv.FormatUint(uint64(chatID), 10)
}

// Subscribe 加入聊天，重复加入无效果
func (r *Registry) Subscribe(chatID uint, sub Subscriber) {
	r.sessions.Upsert(chatKey(chatID), nil, func(exist bool, valueInMap, _ []Subscriber) []Subscriber {
		if !exist {
			return []Subscriber{sub}
		}
		for _, s := range valueInMap {
			if s.ID() == sub.ID() {
				return valueInMap
			}
		}
		next := make([]Subscriber, len(valueInMap), len(valueInMap)+1)
		copy(next, valueInMap)
		return append(next, sub)
	})
}

// Unsubscribe 离开聊天，聊天没有订阅者后删除条目
func (r *Registry) Unsubscribe(chatID uint, sub Subscriber) {
	key := chatKey(chatID)
	r.sessions.Upsert(key, nil, func(exist bool, valueInMap, _ []Subscriber) []Subscriber {
		if !exist {
			return nil
		}
		next := make([]Subscriber, 0, len(valueInMap))
		for _, s := range valueInMap {
			if s.ID() != sub.ID() {
				next = append(next, s)
			}
		}
		return next
	})
	r.sessions.RemoveCb(key, func(_ string, v []Subscriber, exists bool) bool {
		return exists && len(v) == 0
	})
}

// Broadcast 按加入顺序发送给聊天的全部订阅者，返回成功数
// 已关闭的订阅者被移除；缓冲已满的订阅者被移除并以 1013 断开，客户端重连后从历史补齐
func (r *Registry) Broadcast(chatID uint, payload []byte) int {
	subs, ok := r.sessions.Get(chatKey(chatID))
	if !ok {
		return 0
	}

	delivered := 0
	for _, sub := range subs {
		if err := sub.Send(payload); err != nil {
			log.Printf("[Live] Failed to deliver to %s in chat %d: %v", sub.ID(), chatID, err)
			switch {
			case errors.Is(err, ErrClientClosed):
				r.Unsubscribe(chatID, sub)
			case errors.Is(err, ErrSendBufferFull):
				r.Unsubscribe(chatID, sub)
				closeSubscriber(sub, websocket.CloseTryAgainLater, "too slow")
			}
			continue
		}
		delivered++
	}
	return delivered
}

// EvictUser 移除聊天中属于 userID 的全部订阅者并以 1008 断开，返回移除数
func (r *Registry) EvictUser(chatID, userID uint, reason string) int {
	return r.evict(chatID, reason, func(sub Subscriber) bool {
		u, ok := sub.(userBound)
		return ok && u.UserID() == userID
	})
}

// EvictChat 移除聊天的全部订阅者并以 1008 断开，返回移除数
func (r *Registry) EvictChat(chatID uint, reason string) int {
	return r.evict(chatID, reason, func(Subscriber) bool { return true })
}

// EvictUserEverywhere 在所有聊天中移除 userID 的订阅者，返回移除数
func (r *Registry) EvictUserEverywhere(userID uint, reason string) int {
	evicted := 0
	for _, key := range r.sessions.Keys() {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		evicted += r.EvictUser(uint(id), userID, reason)
	}
	return evicted
}

func (r *Registry) evict(chatID uint, reason string, match func(Subscriber) bool) int {
	key := chatKey(chatID)
	var removed []Subscriber
	r.sessions.Upsert(key, nil, func(exist bool, valueInMap, _ []Subscriber) []Subscriber {
		removed = removed[:0]
		if !exist {
			return nil
		}
		next := make([]Subscriber, 0, len(valueInMap))
		for _, s := range valueInMap {
			if match(s) {
				removed = append(removed, s)
				continue
			}
			next = append(next, s)
		}
		return next
	})
	r.sessions.RemoveCb(key, func(_ string, v []Subscriber, exists bool) bool {
		return exists && len(v) == 0
	})

	for _, sub := range removed {
		closeSubscriber(sub, websocket.ClosePolicyViolation, reason)
	}
	if len(removed) > 0 {
		log.Printf("[Live] Evicted %d subscriber(s) from chat %d: %s", len(removed), chatID, reason)
	}
	return len(removed)
}

// Count 返回聊天当前的订阅者数量
func (r *Registry) Count(chatID uint) int {
	subs, _ := r.sessions.Get(chatKey(chatID))
	return len(subs)
}

// Chats 返回有订阅者的聊天数量
func (r *Registry) Chats() int {
	return r.sessions.Count()
}

// Stats 汇总订阅信息，用于健康检查
func (r *Registry) Stats() map[string]int {
	connections := 0
	for item := range r.sessions.IterBuffered() {
		connections += len(item.Val)
	}
	return map[string]int{
		"chats":       r.sessions.Count(),
		"connections": connections,
	}
}

// CloseAll 关闭全部订阅者并清空订阅表，返回关闭的连接数
func (r *Registry) CloseAll() int {
	closed := 0
	for item := range r.sessions.IterBuffered() {
		for _, sub := range item.Val {
			closeSubscriber(sub, websocket.CloseGoingAway, "server shutting down")
			closed++
		}
		r.sessions.Remove(item.Key)
	}
	return closed
}
