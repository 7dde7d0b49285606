package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub 把车间状态实时推送给所有连着的 WebSocket 客户端
// 推送是单向的：客户端只收不发，连接断开靠写失败时清理
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	// broadcast 带小缓冲：台账变更的突发不应阻塞事件处理器
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
}

// NewHub 创建一个尚未运行的 Hub，调用方负责启动 Run
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run 是 Hub 的主循环，串行处理注册、注销和广播
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					// 写失败视同断开，当场摘掉这个客户端
					slog.Warn("推送车间状态失败", "error", err)
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastState 把车间状态视图序列化后排入广播队列
func (h *Hub) BroadcastState(state interface{}) {
	message, err := json.Marshal(state)
	if err != nil {
		slog.Error("序列化车间状态失败", "error", err)
		return
	}
	h.broadcast <- message
}

// upgrader 把普通 HTTP 连接升级为 WebSocket
// 状态视图里没有敏感数据，来源校验交给部署层
var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWs 接入一个新的状态订阅客户端
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("升级 WebSocket 失败", "error", err)
		return
	}
	h.register <- conn
}
