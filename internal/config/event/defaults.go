package event

// defaultEnabled 默认启用事件总线
const defaultEnabled = true
