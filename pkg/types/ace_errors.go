// Package types 定义 ACE 引擎共享的错误类型
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              错误定义
// ============================================================================

// 证明解析与密码学校验错误
var (
	// ErrMalformedInput 证明字节长度或结构不合法
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidCurvePoint 点不在曲线上或为无穷远点
	ErrInvalidCurvePoint = errors.New("invalid curve point")

	// ErrInvalidScalar 标量为零或不小于群阶
	ErrInvalidScalar = errors.New("invalid scalar")

	// ErrChallengeMismatch 重新计算的挑战值与证明中的不一致
	ErrChallengeMismatch = errors.New("challenge mismatch")

	// ErrPairingCheckFailed 配对校验失败（票据不是由公共参考串构造）
	ErrPairingCheckFailed = errors.New("pairing check failed")

	// ErrReferenceStringMismatch 公共参考串格式错误或与可信参考串不一致
	ErrReferenceStringMismatch = errors.New("reference string mismatch")
)

// 证明注册表错误
var (
	// ErrUnknownOrDisabledProofKind 证明类型未注册或已失效
	ErrUnknownOrDisabledProofKind = errors.New("unknown or disabled proof kind")

	// ErrEpochViolation 证明类型的纪元超过当前纪元
	ErrEpochViolation = errors.New("epoch violation")

	// ErrImmutabilityViolation 尝试修改已注册的条目
	ErrImmutabilityViolation = errors.New("immutability violation")

	// ErrPermissionDenied 调用者不是特权操作员
	ErrPermissionDenied = errors.New("permission denied")
)

// 已验证证明缓存与票据注册表错误
var (
	// ErrReplayRejected 缓存条目不存在、已被消费或为零哈希
	ErrReplayRejected = errors.New("replay rejected")

	// ErrUtilityProofMisuse 工具类证明被用于驱动价值变更
	ErrUtilityProofMisuse = errors.New("utility proof misuse")

	// ErrDoubleSpend 输入票据已被花费
	ErrDoubleSpend = errors.New("double spend")

	// ErrUnknownNote 输入票据不存在于注册表
	ErrUnknownNote = errors.New("unknown note")

	// ErrNoteExists 输出票据已存在
	ErrNoteExists = errors.New("note exists")

	// ErrRegistryExists 调用者已拥有票据注册表
	ErrRegistryExists = errors.New("registry exists")

	// ErrUnknownRegistry 调用者没有票据注册表
	ErrUnknownRegistry = errors.New("unknown registry")

	// ErrUnknownFactory 票据注册表工厂不存在
	ErrUnknownFactory = errors.New("unknown factory")

	// ErrConversionDisabled 注册表不允许公开价值转换
	ErrConversionDisabled = errors.New("conversion disabled")

	// ErrSupplyAdjustmentDisabled 注册表不允许调整供应量
	ErrSupplyAdjustmentDisabled = errors.New("supply adjustment disabled")

	// ErrInsufficientPublicApproval 公开授权额度不足
	ErrInsufficientPublicApproval = errors.New("insufficient public approval")

	// ErrPublicTransferFailed 公开账本转账失败
	ErrPublicTransferFailed = errors.New("public transfer failed")

	// ErrPermitInvalid 签名授权无效（签名错误、nonce 错误或已过期）
	ErrPermitInvalid = errors.New("permit invalid")
)

// reasonCodes 错误到稳定原因码的映射，顺序即匹配优先级
var reasonCodes = []struct {
	err    error
	reason string
}{
	{ErrReferenceStringMismatch, "REFERENCE_STRING_MISMATCH"},
	{ErrMalformedInput, "MALFORMED_INPUT"},
	{ErrInvalidCurvePoint, "INVALID_CURVE_POINT"},
	{ErrInvalidScalar, "INVALID_SCALAR"},
	{ErrChallengeMismatch, "CHALLENGE_MISMATCH"},
	{ErrPairingCheckFailed, "PAIRING_CHECK_FAILED"},
	{ErrUnknownOrDisabledProofKind, "UNKNOWN_OR_DISABLED_PROOF_KIND"},
	{ErrEpochViolation, "EPOCH_VIOLATION"},
	{ErrImmutabilityViolation, "IMMUTABILITY_VIOLATION"},
	{ErrPermissionDenied, "PERMISSION_DENIED"},
	{ErrReplayRejected, "REPLAY_REJECTED"},
	{ErrUtilityProofMisuse, "UTILITY_PROOF_MISUSE"},
	{ErrDoubleSpend, "DOUBLE_SPEND"},
	{ErrUnknownNote, "UNKNOWN_NOTE"},
	{ErrNoteExists, "NOTE_EXISTS"},
	{ErrRegistryExists, "REGISTRY_EXISTS"},
	{ErrUnknownRegistry, "UNKNOWN_REGISTRY"},
	{ErrUnknownFactory, "UNKNOWN_FACTORY"},
	{ErrConversionDisabled, "CONVERSION_DISABLED"},
	{ErrSupplyAdjustmentDisabled, "SUPPLY_ADJUSTMENT_DISABLED"},
	{ErrInsufficientPublicApproval, "INSUFFICIENT_PUBLIC_APPROVAL"},
	{ErrPublicTransferFailed, "PUBLIC_TRANSFER_FAILED"},
	{ErrPermitInvalid, "PERMIT_INVALID"},
}

// ReasonUnknown 无法归类的错误
const ReasonUnknown = "INTERNAL"

// ReasonOf 返回错误对应的稳定原因码
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.reason
		}
	}
	return ReasonUnknown
}

// ============================================================================
//                              错误包装函数
// ============================================================================

// WrapMalformedInputError 包装结构错误
func WrapMalformedInputError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// WrapInvalidCurvePointError 包装无效点错误
func WrapInvalidCurvePointError(what string, index int) error {
	return fmt.Errorf("%w: %s (note=%d)", ErrInvalidCurvePoint, what, index)
}

// WrapInvalidScalarError 包装无效标量错误
func WrapInvalidScalarError(what string, index int) error {
	return fmt.Errorf("%w: %s (note=%d)", ErrInvalidScalar, what, index)
}

// WrapUnknownProofKindError 包装未知证明类型错误
func WrapUnknownProofKindError(kind uint32) error {
	return fmt.Errorf("%w: kind=%d", ErrUnknownOrDisabledProofKind, kind)
}

// WrapEpochViolationError 包装纪元错误
func WrapEpochViolationError(epoch, latest uint64) error {
	return fmt.Errorf("%w: epoch=%d latest=%d", ErrEpochViolation, epoch, latest)
}

// WrapPermissionDeniedError 包装权限错误
func WrapPermissionDeniedError(operation, caller string) error {
	return fmt.Errorf("%w: operation=%s caller=%s", ErrPermissionDenied, operation, caller)
}

// WrapPermitInvalidError 包装签名授权错误
func WrapPermitInvalidError(cause error) error {
	return fmt.Errorf("%w: %v", ErrPermitInvalid, cause)
}

// WrapPublicTransferError 包装公开账本转账错误
func WrapPublicTransferError(cause error) error {
	return fmt.Errorf("%w: %v", ErrPublicTransferFailed, cause)
}
