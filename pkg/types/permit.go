package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// SignatureLength r(32) ‖ s(32) ‖ v(1)
const SignatureLength = 65

// Permit Dai 风格的一次性签名授权
//
// 持有人签名后，任何人都可以提交该授权为 Spender 设置额度：
// Allowed 为真时额度为最大值，否则清零。Expiry 为 0 表示永不过期。
type Permit struct {
	Holder    common.Address
	Spender   common.Address
	Nonce     uint64
	Expiry    uint64
	Allowed   bool
	Signature [SignatureLength]byte
}
