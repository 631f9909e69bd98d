package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/configs"
	"github.com/weisyn/ace/pkg/types"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ace.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"environment": "test",
		"data_dir": "`+dir+`",
		"log": {"level": "debug"},
		"storage": {"in_memory": true},
		"api": {"http_port": 9000},
		"ace": {"owner": "0x00000000000000000000000000000000000000aa", "kind_layout": {"epoch_bits": 12}}
	}`), 0600))

	opts, err := LoadFromFile(path)
	require.NoError(t, err)

	p, err := NewProvider(opts.GetAppConfig())
	require.NoError(t, err)

	assert.Equal(t, "test", p.GetEnvironment())
	assert.Equal(t, "debug", p.GetLog().Level)
	assert.True(t, p.GetBadger().InMemory)
	assert.Equal(t, filepath.Join(dir, "badger"), p.GetBadger().Path)
	assert.Equal(t, 9000, p.GetAPI().HTTP.Port)
	assert.Equal(t, common.HexToAddress("0xaa"), p.GetACE().Owner)
	assert.Equal(t, uint(12), p.GetACE().KindLayout.EpochBits)
	assert.True(t, p.GetEvent().Enabled)
	assert.Equal(t, "system", p.GetClock().Type)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestProvideConfigServicesRejectsBadACE(t *testing.T) {
	opts, err := LoadFromFile("")
	require.NoError(t, err)

	_, err = ProvideConfigServices(ConfigParams{AppOptions: opts})
	require.NoError(t, err)

	bad := "nope"
	opts.GetAppConfig().ACE = &types.UserACEConfig{Owner: &bad}
	_, err = ProvideConfigServices(ConfigParams{AppOptions: opts})
	assert.Error(t, err)
}

func TestEmbeddedConfigsParse(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		data, ok := configs.Get(env)
		require.True(t, ok, env)
		opts, err := LoadFromBytes(data)
		require.NoError(t, err, env)
		p, err := NewProvider(opts.GetAppConfig())
		require.NoError(t, err, env)
		assert.Equal(t, env, p.GetEnvironment())
	}
}
