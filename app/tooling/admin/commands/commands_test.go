package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/stretchr/testify/require"
)

func TestReadIDs(t *testing.T) {
	in := `
b1fea52486ce0c62bb442b530a3f0132b826c74e473d1f2c220bfa78111c5082

  f4184fc596403b9d638783cf57adfe4c75c605f6356fbc91338530e9831e9e16
`
	ids, err := commands.ReadIDs(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ids, 2)

	root, err := merkle.RootFromIDs(ids)
	require.NoError(t, err)
	require.Equal(t, "7dac2c5666815c17a3b36427de37bb9d2e2c5ccec3f8633eb91a4205cb4c10ff", root)
}

func TestDemo(t *testing.T) {
	gen := genesis.Default()
	gen.Difficulty = 4

	var out bytes.Buffer
	err := commands.Demo(context.Background(), &out, gen, func(v string, args ...any) {
		t.Logf(v, args...)
	})
	require.NoError(t, err)

	s := out.String()
	require.Contains(t, s, "blocks[2] valid[true]")
	require.Contains(t, s, "rejected[true]")
}
