// Package types HTTP API 共享类型
package types

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ProblemDetails RFC7807 错误响应，Code 为引擎的稳定原因码
type ProblemDetails struct {
	// RFC7807 标准字段
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// 扩展字段
	Code      string `json:"code"`
	TraceID   string `json:"traceId"`
	Timestamp string `json:"timestamp"`
}

// ContentType problem+json 媒体类型
const ContentType = "application/problem+json"

// 非引擎错误使用的原因码
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL"
	CodeReadOnly   = "READ_ONLY"
)

// Error 实现 error 接口
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// WriteJSON 将 Problem Details 写入 HTTP 响应
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewProblemDetails 按原因码创建 Problem Details；traceID 为空时生成新的 UUID
func NewProblemDetails(code, detail, instance, traceID string) *ProblemDetails {
	if traceID == "" {
		traceID = uuid.New().String()
	}
	status := StatusOf(code)
	return &ProblemDetails{
		Type:      "urn:ace:problem:" + code,
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Instance:  instance,
		Code:      code,
		TraceID:   traceID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// IsProblemDetails 检查错误是否为 Problem Details
func IsProblemDetails(err error) (*ProblemDetails, bool) {
	if pd, ok := err.(*ProblemDetails); ok {
		return pd, true
	}
	return nil, false
}

// StatusOf 原因码对应的 HTTP 状态码
func StatusOf(code string) int {
	switch code {
	case CodeBadRequest, "MALFORMED_INPUT":
		return http.StatusBadRequest
	case "INVALID_CURVE_POINT", "INVALID_SCALAR", "CHALLENGE_MISMATCH",
		"PAIRING_CHECK_FAILED", "REFERENCE_STRING_MISMATCH", "UTILITY_PROOF_MISUSE":
		return http.StatusUnprocessableEntity
	case CodeNotFound, "UNKNOWN_OR_DISABLED_PROOF_KIND", "UNKNOWN_NOTE",
		"UNKNOWN_REGISTRY", "UNKNOWN_FACTORY":
		return http.StatusNotFound
	case "PERMISSION_DENIED", "CONVERSION_DISABLED", "SUPPLY_ADJUSTMENT_DISABLED":
		return http.StatusForbidden
	case "REPLAY_REJECTED", "DOUBLE_SPEND", "NOTE_EXISTS", "REGISTRY_EXISTS",
		"IMMUTABILITY_VIOLATION", "EPOCH_VIOLATION":
		return http.StatusConflict
	case "INSUFFICIENT_PUBLIC_APPROVAL", "PUBLIC_TRANSFER_FAILED", "PERMIT_INVALID":
		return http.StatusPaymentRequired
	case CodeReadOnly:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
