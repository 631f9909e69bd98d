// Package clock 定义引擎使用的时间源
//
// 票据的创建与销毁时间、许可签名的过期判断都以 Timestamp 为准，
// 部署时可切换为 NTP 校正时钟，测试使用可控的 Mock 时钟。
package clock

import "time"

// Clock 时间源
type Clock interface {
	// Now 当前时间
	Now() time.Time

	// Since 从 t 到现在经过的时间
	Since(t time.Time) time.Duration

	// Timestamp 当前 Unix 秒，用于写入票据记录与比较许可过期时间
	Timestamp() uint64
}

// TimestampOf 把时间截断为 Unix 秒；早于纪元的时间记为 0
func TimestampOf(t time.Time) uint64 {
	if s := t.Unix(); s > 0 {
		return uint64(s)
	}
	return 0
}
