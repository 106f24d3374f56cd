package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/signadot/confnode/loader"
)

func TestMoveTransform(t *testing.T) {
	in := `servers:
  - addr: a
    port: 1
  - addr: b
defaults:
  port: 80
  tls: false
tls: true
`
	tests := []struct {
		name     string
		from, to string
		merge    bool
		want     string
	}{
		{
			name: "rename in each element",
			from: "servers.*.addr", to: "servers.*.host",
			want: `{"servers":[{"port":1,"host":"a"},{"host":"b"}],"defaults":{"port":80,"tls":false},"tls":true}`,
		},
		{
			name: "overwrite",
			from: "tls", to: "defaults",
			want: `{"servers":[{"addr":"a","port":1},{"addr":"b"}],"defaults":true}`,
		},
		{
			name: "merge",
			from: "defaults", to: ".", merge: true,
			want: `{"servers":[{"addr":"a","port":1},{"addr":"b"}],"tls":true,"port":80}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := loader.Decode([]byte(in), loader.YAML)
			require.NoError(t, err)
			tr, err := moveTransform(tt.from, tt.to, tt.merge)
			require.NoError(t, err)
			require.NoError(t, tr.Apply(n))
			out, err := loader.Encode(n, loader.JSON, loader.WithIndent(0))
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(out))
		})
	}

	_, err := moveTransform("a[+]", "b", false)
	require.Error(t, err)
}
