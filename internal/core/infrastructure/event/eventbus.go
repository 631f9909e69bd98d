// 基于asaskevich/EventBus的事件总线实现
// 在底层总线之上增加结构化事件的过滤订阅与事件历史

package event

import (
	"fmt"
	"sort"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"

	eventconfig "github.com/weisyn/ace/internal/config/event"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/log"
)

var _ event.EventBus = (*EventBus)(nil)

// EventBus 是基于asaskevich/EventBus的实现
type EventBus struct {
	bus    evbus.Bus           // 底层事件总线
	config *eventconfig.Config // 配置
	logger log.Logger

	// 过滤订阅
	subMu         sync.RWMutex
	subscriptions map[event.EventType]map[event.SubscriptionID]*filteredSubscription

	// 历史记录
	historyMu    sync.RWMutex
	historyLimit map[event.EventType]int
	eventHistory map[event.EventType][]event.Event
}

type filteredSubscription struct {
	id        event.SubscriptionID
	filter    event.EventFilter
	handler   event.EventHandler
	createdAt time.Time
}

// New 创建事件总线实例
func New(config *eventconfig.Config, logger log.Logger) *EventBus {
	if config == nil {
		config = eventconfig.New(nil)
	}
	return &EventBus{
		bus:           evbus.New(),
		config:        config,
		logger:        logger,
		subscriptions: make(map[event.EventType]map[event.SubscriptionID]*filteredSubscription),
		historyLimit:  make(map[event.EventType]int),
		eventHistory:  make(map[event.EventType][]event.Event),
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil // 如果事件系统未启用，静默成功
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// SubscribeOnce 实现一次性订阅
func (eb *EventBus) SubscribeOnce(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeOnce(string(eventType), handler)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// Publish 实现发布
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if !eb.config.IsEnabled() {
		return
	}
	eb.bus.Publish(string(eventType), args...)
}

// PublishEvent 发布Event接口类型事件
func (eb *EventBus) PublishEvent(e event.Event) {
	if !eb.config.IsEnabled() || e == nil {
		return
	}
	eventType := e.Type()
	eb.recordHistory(e)
	eb.bus.Publish(string(eventType), e)
	eb.dispatchFiltered(e)
}

func (eb *EventBus) dispatchFiltered(e event.Event) {
	eb.subMu.RLock()
	subs := make([]*filteredSubscription, 0, len(eb.subscriptions[e.Type()]))
	for _, sub := range eb.subscriptions[e.Type()] {
		subs = append(subs, sub)
	}
	eb.subMu.RUnlock()

	// 按订阅先后投递
	sort.Slice(subs, func(i, j int) bool { return subs[i].createdAt.Before(subs[j].createdAt) })
	for _, sub := range subs {
		if sub.filter != nil && !sub.filter(e) {
			continue
		}
		if err := sub.handler(e); err != nil && eb.logger != nil {
			eb.logger.Warnf("事件处理失败: type=%s subscription=%s err=%v", e.Type(), sub.id, err)
		}
	}
}

// SubscribeWithFilter 带过滤器的订阅
func (eb *EventBus) SubscribeWithFilter(eventType event.EventType, filter event.EventFilter, handler event.EventHandler) (event.SubscriptionID, error) {
	if !eb.config.IsEnabled() {
		return "", nil
	}
	if handler == nil {
		return "", fmt.Errorf("handler cannot be nil")
	}

	sub := &filteredSubscription{
		id:        event.SubscriptionID(uuid.New().String()),
		filter:    filter,
		handler:   handler,
		createdAt: time.Now(),
	}

	eb.subMu.Lock()
	defer eb.subMu.Unlock()
	if eb.subscriptions[eventType] == nil {
		eb.subscriptions[eventType] = make(map[event.SubscriptionID]*filteredSubscription)
	}
	eb.subscriptions[eventType][sub.id] = sub
	return sub.id, nil
}

// UnsubscribeByID 通过订阅ID取消订阅
func (eb *EventBus) UnsubscribeByID(id event.SubscriptionID) error {
	if !eb.config.IsEnabled() {
		return nil
	}

	eb.subMu.Lock()
	defer eb.subMu.Unlock()
	for eventType, subs := range eb.subscriptions {
		if _, ok := subs[id]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(eb.subscriptions, eventType)
			}
			return nil
		}
	}
	return fmt.Errorf("subscription not found: %s", id)
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	if !eb.config.IsEnabled() {
		return
	}
	eb.bus.WaitAsync()
}

// HasCallback 检查是否有回调
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	if !eb.config.IsEnabled() {
		return false
	}
	if eb.bus.HasCallback(string(eventType)) {
		return true
	}
	eb.subMu.RLock()
	defer eb.subMu.RUnlock()
	return len(eb.subscriptions[eventType]) > 0
}

// EnableEventHistory 启用事件历史记录
func (eb *EventBus) EnableEventHistory(eventType event.EventType, maxSize int) error {
	if maxSize <= 0 {
		return fmt.Errorf("history size must be positive, got %d", maxSize)
	}
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()
	eb.historyLimit[eventType] = maxSize
	if h := eb.eventHistory[eventType]; len(h) > maxSize {
		eb.eventHistory[eventType] = h[len(h)-maxSize:]
	}
	return nil
}

// GetEventHistory 获取指定类型的事件历史（旧在前）
func (eb *EventBus) GetEventHistory(eventType event.EventType) []event.Event {
	eb.historyMu.RLock()
	defer eb.historyMu.RUnlock()
	h := eb.eventHistory[eventType]
	if h == nil {
		return nil
	}
	out := make([]event.Event, len(h))
	copy(out, h)
	return out
}

func (eb *EventBus) recordHistory(e event.Event) {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()
	limit, ok := eb.historyLimit[e.Type()]
	if !ok {
		return
	}
	h := append(eb.eventHistory[e.Type()], e)
	if len(h) > limit {
		h = h[len(h)-limit:]
	}
	eb.eventHistory[e.Type()] = h
}
