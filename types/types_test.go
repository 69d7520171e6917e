package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhysBC(t *testing.T) {
	{ // Labels are case and whitespace insensitive
		bc, err := NewPhysBC("  Outflow ")
		require.NoError(t, err)
		assert.Equal(t, BC_Outflow, bc)
		assert.Equal(t, "Outflow", bc.Print())
		_, err = NewPhysBC("vacuum")
		assert.Error(t, err)
	}
	{ // Mask tags follow the physical BC
		assert.Equal(t, Mask_Inflow, BC_Inflow.MaskTag())
		assert.Equal(t, Mask_NoSlipWall, BC_NoSlipWall.MaskTag())
		assert.Equal(t, Mask_Interior, BC_Interior.MaskTag())
		assert.True(t, BC_SlipWall.MaskTag().IsWall())
		assert.False(t, BC_Outflow.MaskTag().IsWall())
		assert.True(t, BC_Inflow.IsCharacteristic())
		assert.False(t, BC_Symmetry.IsCharacteristic())
	}
}
