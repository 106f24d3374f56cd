package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/signadot/confnode/node"
)

func TestDiffInputs(t *testing.T) {
	a, err := node.New(map[string]any{"port": 80, "host": "a"})
	require.NoError(t, err)
	b, err := node.New(map[string]any{"port": 8080})
	require.NoError(t, err)

	var buf bytes.Buffer
	cfg := &DiffConfig{MainConfig: &MainConfig{}}
	differs, err := diffInputs(cfg, &buf, a, b, true)
	require.NoError(t, err)
	require.True(t, differs)
	require.Equal(t, "---\n- host: \"a\"\n~ port: 80 -> 8080\n", buf.String())

	buf.Reset()
	cfg.Reverse = true
	_, err = diffInputs(cfg, &buf, a, b, false)
	require.NoError(t, err)
	require.Equal(t, "+ host: \"a\"\n~ port: 8080 -> 80\n", buf.String())

	buf.Reset()
	differs, err = diffInputs(cfg, &buf, a, a.Copy(), true)
	require.NoError(t, err)
	require.False(t, differs)
	require.Empty(t, buf.String())
}
