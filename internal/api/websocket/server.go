// Package websocket 通过 WebSocket 推送引擎事件
//
// 客户端连接 /api/v1/ace/events，可用 ?types=a,b 限定事件类型。
// 每条消息为 {"type": ..., "data": ...}，只推送已提交事务产生的事件。
package websocket

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/weisyn/ace/internal/api/http/middleware"
	apitypes "github.com/weisyn/ace/internal/api/types"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
)

const (
	sendBuffer   = 256
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
)

// Message 推送给客户端的事件
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Server WebSocket 事件推送
type Server struct {
	bus      event.EventBus
	types    []event.EventType
	logger   log.Logger
	upgrader websocket.Upgrader
}

// NewServer 创建推送服务；eventTypes 为可订阅的全部类型
func NewServer(bus event.EventBus, eventTypes []event.EventType, logger log.Logger) *Server {
	return &Server{
		bus:    bus,
		types:  eventTypes,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// 只读推送，不携带凭据
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes 注册 /ace/events
func (s *Server) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ace/events", s.HandleWebSocket)
}

// selectTypes 解析 types 查询参数，空表示全部
func (s *Server) selectTypes(query string) ([]event.EventType, error) {
	if query == "" {
		return s.types, nil
	}
	known := make(map[event.EventType]bool, len(s.types))
	for _, t := range s.types {
		known[t] = true
	}
	var out []event.EventType
	for _, name := range strings.Split(query, ",") {
		t := event.EventType(strings.TrimSpace(name))
		if !known[t] {
			return nil, fmt.Errorf("unknown event type %q", t)
		}
		out = append(out, t)
	}
	return out, nil
}

// HandleWebSocket 升级连接并持续推送事件，直到客户端断开或消费过慢
func (s *Server) HandleWebSocket(c *gin.Context) {
	wanted, err := s.selectTypes(c.Query("types"))
	if err != nil {
		middleware.Abort(c, apitypes.CodeBadRequest, err.Error())
		return
	}

	out := make(chan Message, sendBuffer)
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	ids := make([]event.SubscriptionID, 0, len(wanted))
	defer func() {
		for _, id := range ids {
			_ = s.bus.UnsubscribeByID(id)
		}
	}()
	for _, t := range wanted {
		id, err := s.bus.SubscribeWithFilter(t, nil, func(ev event.Event) error {
			select {
			case <-done:
			case out <- Message{Type: string(ev.Type()), Data: ev.Data()}:
			default:
				// 缓冲区满：断开慢消费者，发布方不阻塞
				stop()
			}
			return nil
		})
		if err != nil {
			middleware.Abort(c, apitypes.CodeInternal, err.Error())
			return
		}
		ids = append(ids, id)
	}

	// 先订阅后升级：握手完成时订阅已生效
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warnf("WebSocket 升级失败: %v", err)
		return
	}
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	s.logger.Infof("WebSocket 已连接: remote=%s types=%d", remote, len(wanted))

	// 读循环只处理 pong 与关闭
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debugf("WebSocket 读取结束: remote=%s err=%v", remote, err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debugf("WebSocket 写入失败: remote=%s err=%v", remote, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
			s.logger.Infof("WebSocket 已断开: remote=%s", remote)
			return
		}
	}
}
