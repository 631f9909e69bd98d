package app

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/internal/core/ace/engine"
	"github.com/weisyn/ace/internal/core/ace/proofkind"
	"github.com/weisyn/ace/internal/core/ace/registry"
	"github.com/weisyn/ace/internal/core/ledger"
	"github.com/weisyn/ace/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func testConfig() *types.AppConfig {
	return &types.AppConfig{
		Environment: ptr("test"),
		Log:         &types.UserLogConfig{Level: ptr("error")},
		Storage:     &types.UserStorageConfig{InMemory: ptr(true)},
		ACE: &types.UserACEConfig{
			DevTrapdoor: ptr("0x1234"),
			Tokens: []types.UserTokenConfig{{
				Name:     "Dev",
				Address:  "0x00000000000000000000000000000000000000d1",
				Balances: map[string]string{"0x00000000000000000000000000000000000000a1": "1000"},
			}},
		},
	}
}

func TestStartWiresEngine(t *testing.T) {
	var (
		eng *engine.Engine
		dir *ledger.Directory
		reg *prometheus.Registry
	)
	a, err := Start(WithAppConfig(testConfig()), WithoutAPI(), WithPopulate(&eng, &dir, &reg))
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Stop()) }()

	ctx := context.Background()
	epoch, err := eng.LatestEpoch(ctx)
	require.NoError(t, err)
	assert.Equal(t, registry.InitialEpoch, epoch)

	kind, err := eng.Layout().Encode(1, proofkind.CategoryBalanced, 1)
	require.NoError(t, err)
	status, _, err := eng.GetProofStatus(ctx, kind)
	require.NoError(t, err)
	assert.Equal(t, registry.StatusRegistered, status)

	rs, err := eng.ReferenceString(ctx)
	require.NoError(t, err)
	assert.False(t, rs.IsZero())

	token, ok := dir.Ledger(common.HexToAddress("0x00000000000000000000000000000000000000d1"))
	require.True(t, ok)
	assert.Equal(t, uint64(1000), token.BalanceOf(common.HexToAddress("0x00000000000000000000000000000000000000a1")).Uint64())

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestStartRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ACE.Owner = ptr("not-an-address")
	_, err := Start(WithAppConfig(cfg), WithoutAPI())
	assert.Error(t, err)
}
