package main

import (
	"testing"

	"github.com/scott-cotton/cli"
	"github.com/stretchr/testify/require"

	"github.com/signadot/confnode/node"
)

func TestParseSet(t *testing.T) {
	s, err := parseSet("server.tags=[a, b]")
	require.NoError(t, err)
	require.Equal(t, node.Path{node.Field("server"), node.Field("tags")}, s.path)
	require.Equal(t, []any{"a", "b"}, s.val)

	_, err = parseSet("no-equals")
	require.ErrorIs(t, err, cli.ErrUsage)
}

func TestMergeLayers(t *testing.T) {
	first, err := node.New(map[string]any{
		"x": 1,
		"y": map[string]any{"p": 1, "q": 1},
		"l": []any{"a", "b"},
	})
	require.NoError(t, err)
	second, err := node.New(map[string]any{
		"y": map[string]any{"q": 2},
		"z": 3,
		"l": []any{"c"},
	})
	require.NoError(t, err)
	s, err := parseSet("y.p=9")
	require.NoError(t, err)

	got, err := mergeLayers([]set{s}, []*node.Node{first, second})
	require.NoError(t, err)
	want, err := node.New(map[string]any{
		"x": 1,
		"y": map[string]any{"p": 9, "q": 2},
		"z": 3,
		"l": []any{"c"},
	})
	require.NoError(t, err)
	require.True(t, node.Equal(want, got), "got %v", got.Interface())

	// layers are not modified
	q, _ := first.Node(node.Field("y"), node.Field("q")).Value().AsInt()
	require.EqualValues(t, 1, q)
}
