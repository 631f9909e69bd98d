package testutil

import (
	"context"

	aceiface "github.com/weisyn/ace/pkg/interfaces/ace"
	"github.com/weisyn/ace/pkg/types"
)

var _ aceiface.ProofValidator = (*StubValidator)(nil)

// StubValidator 返回预设输出的验证器；OutputsFor 非空时按证明字节决定输出
type StubValidator struct {
	ValidatorName string
	Outputs       types.ProofOutputs
	OutputsFor    func(proof []byte) (types.ProofOutputs, error)
	Err           error
	Calls         int
}

// Name 实现 ProofValidator
func (s *StubValidator) Name() string { return s.ValidatorName }

// Validate 实现 ProofValidator
func (s *StubValidator) Validate(ctx context.Context, proof []byte, _ *aceiface.ValidationContext) (types.ProofOutputs, error) {
	s.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.OutputsFor != nil {
		return s.OutputsFor(proof)
	}
	return s.Outputs, nil
}
