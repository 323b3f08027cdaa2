package cmd

import (
	"testing"

	"github.com/bnema/stilch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDisplaysDefaultsToOneStandIn(t *testing.T) {
	displays := resolveDisplays(nil)
	require.Len(t, displays, 1)
	assert.Equal(t, "eDP-1", displays[0].Name)
	assert.EqualValues(t, defaultPixelSize.W, displays[0].LogicalSize.W)
}

func TestResolveDisplaysAppliesConfigOverrides(t *testing.T) {
	layout := &config.Layout{
		Outputs: []config.OutputSpec{
			{Name: "DP-1", HasScale: true, Scale: 2, HasPosition: true, PositionX: 1920, PositionY: 0},
			{Name: "DP-2"},
		},
	}
	displays := resolveDisplays(layout)
	require.Len(t, displays, 2)
	assert.Equal(t, "DP-1", displays[0].Name)
	assert.EqualValues(t, 2, displays[0].Scale)
	assert.EqualValues(t, 1920, displays[0].LogicalPosition.X)
	assert.Equal(t, "DP-2", displays[1].Name)
	assert.EqualValues(t, 1, displays[1].Scale)
}
