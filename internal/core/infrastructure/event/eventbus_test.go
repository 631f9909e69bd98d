package event

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/ace/internal/config/event"
	"github.com/weisyn/ace/pkg/interfaces/infrastructure/event"
)

type testEvent struct {
	t    event.EventType
	data string
}

func (e testEvent) Type() event.EventType { return e.t }
func (e testEvent) Data() interface{}     { return e.data }

func TestEventBus(t *testing.T) {
	eventBus := New(eventconfig.New(nil), nil)

	// 同步事件处理
	var receivedData string
	handler := func(data string) {
		receivedData = data
	}
	require.NoError(t, eventBus.Subscribe("test-event", handler))
	eventBus.Publish("test-event", "hello world")
	assert.Equal(t, "hello world", receivedData)

	// 异步事件处理
	var mu sync.Mutex
	var asyncData string
	asyncHandler := func(data string) {
		mu.Lock()
		asyncData = data
		mu.Unlock()
	}
	require.NoError(t, eventBus.SubscribeAsync("async-event", asyncHandler, false))
	eventBus.Publish("async-event", "async data")
	eventBus.WaitAsync()
	mu.Lock()
	assert.Equal(t, "async data", asyncData)
	mu.Unlock()

	// 取消订阅后不再接收
	require.NoError(t, eventBus.Unsubscribe("test-event", handler))
	receivedData = ""
	eventBus.Publish("test-event", "should not receive")
	assert.Empty(t, receivedData)
}

func TestSubscribeWithFilter(t *testing.T) {
	eventBus := New(eventconfig.New(nil), nil)

	var got []string
	id, err := eventBus.SubscribeWithFilter("note", func(e event.Event) bool {
		return e.Data().(string) != "skip"
	}, func(e event.Event) error {
		got = append(got, e.Data().(string))
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, eventBus.HasCallback("note"))

	// 处理器错误不影响后续投递
	_, err = eventBus.SubscribeWithFilter("note", nil, func(event.Event) error {
		return errors.New("boom")
	})
	require.NoError(t, err)

	eventBus.PublishEvent(testEvent{t: "note", data: "a"})
	eventBus.PublishEvent(testEvent{t: "note", data: "skip"})
	eventBus.PublishEvent(testEvent{t: "other", data: "b"})
	assert.Equal(t, []string{"a"}, got)

	require.NoError(t, eventBus.UnsubscribeByID(id))
	eventBus.PublishEvent(testEvent{t: "note", data: "c"})
	assert.Equal(t, []string{"a"}, got)
	assert.Error(t, eventBus.UnsubscribeByID(id))

	_, err = eventBus.SubscribeWithFilter("note", nil, nil)
	assert.Error(t, err)
}

func TestEventHistory(t *testing.T) {
	eventBus := New(eventconfig.New(nil), nil)
	assert.Nil(t, eventBus.GetEventHistory("h"))
	assert.Error(t, eventBus.EnableEventHistory("h", 0))

	require.NoError(t, eventBus.EnableEventHistory("h", 2))
	for _, d := range []string{"1", "2", "3"} {
		eventBus.PublishEvent(testEvent{t: "h", data: d})
	}
	history := eventBus.GetEventHistory("h")
	require.Len(t, history, 2)
	assert.Equal(t, "2", history[0].Data())
	assert.Equal(t, "3", history[1].Data())
}

func TestDisabledBus(t *testing.T) {
	eventBus := New(eventconfig.NewFromOptions(&eventconfig.EventOptions{Enabled: false}), nil)

	called := false
	require.NoError(t, eventBus.Subscribe("x", func() { called = true }))
	eventBus.Publish("x")
	assert.False(t, called)
	assert.False(t, eventBus.HasCallback("x"))
}
