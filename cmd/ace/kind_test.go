package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/ace/internal/core/ace/proofkind"
)

func TestParseKind(t *testing.T) {
	k, err := parseKind("65793")
	require.NoError(t, err)
	assert.Equal(t, proofkind.Kind(65793), k)

	k, err = parseKind("0x010101")
	require.NoError(t, err)
	assert.Equal(t, proofkind.Kind(65793), k)

	_, err = parseKind("abc")
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	c, err := parseCategory("utility")
	require.NoError(t, err)
	assert.Equal(t, proofkind.CategoryUtility, c)

	c, err = parseCategory("2")
	require.NoError(t, err)
	assert.Equal(t, proofkind.CategoryMint, c)

	_, err = parseCategory("nope")
	assert.Error(t, err)
}

func TestConfiguredLayoutDefaults(t *testing.T) {
	globalFlags = GlobalFlags{}
	layout, err := configuredLayout()
	require.NoError(t, err)
	assert.Equal(t, proofkind.DefaultLayout, layout)
}

func TestLoadEmbeddedConfig(t *testing.T) {
	defer func() { globalFlags = GlobalFlags{} }()

	globalFlags = GlobalFlags{Env: "dev"}
	cfg, err := loadAppConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.ACE)
	assert.Len(t, cfg.ACE.Tokens, 1)
	assert.Equal(t, "dev", *cfg.Environment)

	globalFlags = GlobalFlags{Env: "staging"}
	_, err = loadAppConfig()
	assert.Error(t, err)
}
