package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/reactingflow/tools/convOrder"
)

func TestRunConverge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave.csv")
	mc := &ModelConverge{NumPts: []int{16, 32}, FluxType: "HLLC", Limiter: "MC", CFL: 0.5, CSVFile: path}
	cs, err := RunConverge(context.Background(), mc)
	require.NoError(t, err)
	require.Len(t, cs.NumPts, 2)
	assert.Less(t, cs.RhoL1[1], cs.RhoL1[0])
	orders := cs.Orders(cs.RhoL1)
	require.Len(t, orders, 1)
	assert.Greater(t, orders[0], 1.)
	// pressure stays uniform for a contact wave
	for _, e := range cs.PLInf {
		assert.Less(t, e, 1.e-8)
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	studies, err := convOrder.ReadCSV(f)
	require.NoError(t, err)
	require.Contains(t, studies, cs.Title)
	assert.Equal(t, cs.NumPts, studies[cs.Title].NumPts)
}
