// Package event 定义事件总线接口
//
// ACE 引擎在事务提交后发布状态变更事件（证明验证、票据创建与销毁、纪元递增等），
// 订阅方（HTTP 层、指标、测试）通过事件总线接收通知。
package event

// EventType 事件类型
type EventType string

// SubscriptionID 订阅标识
type SubscriptionID string

// Event 事件接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Data 返回事件数据
	Data() interface{}
}

// EventHandler 结构化事件处理器
type EventHandler func(event Event) error

// EventFilter 事件过滤器，返回 true 时投递
type EventFilter func(event Event) bool

// EventBus 事件总线接口
type EventBus interface {
	// Subscribe 订阅事件，handler 为任意签名函数，参数与 Publish 的 args 对应
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅事件
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// SubscribeOnce 一次性订阅事件
	SubscribeOnce(eventType EventType, handler interface{}) error
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error

	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})
	// PublishEvent 发布Event接口类型事件，订阅方收到的参数为 Event 本身
	PublishEvent(event Event)

	// SubscribeWithFilter 订阅结构化事件，filter 为 nil 时全部投递
	SubscribeWithFilter(eventType EventType, filter EventFilter, handler EventHandler) (SubscriptionID, error)
	// UnsubscribeByID 通过订阅ID取消订阅
	UnsubscribeByID(id SubscriptionID) error

	// WaitAsync 等待所有异步处理完成
	WaitAsync()
	// HasCallback 检查是否有回调函数
	HasCallback(eventType EventType) bool

	// EnableEventHistory 为事件类型保留最近 maxSize 条事件
	EnableEventHistory(eventType EventType, maxSize int) error
	// GetEventHistory 获取指定事件类型的历史记录，未启用时返回nil
	GetEventHistory(eventType EventType) []Event
}
