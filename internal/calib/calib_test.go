package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ambilight/internal/render"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("halves")
	require.NoError(t, err)
	assert.Equal(t, Halves, k)
	_, err = ParseKind("plane_z")
	assert.Error(t, err)
}

func TestRunnerKindAndSteps(t *testing.T) {
	r := NewRunner(Plan{Kind: IndexSweep})
	assert.Equal(t, IndexSweep, r.Kind())
	assert.Equal(t, 300, r.Steps(300))
	assert.Equal(t, 3, NewRunner(Plan{Kind: RGBChannels}).Steps(300))
}

func TestIndexSweep(t *testing.T) {
	r := NewRunner(Plan{Kind: IndexSweep})
	buf := make([]uint32, 4)
	white := render.GRB.Pack(render.Pixel{R: 255, G: 255, B: 255})
	for i := 0; i < 4; i++ {
		require.True(t, r.Step(buf, render.GRB))
		for j, w := range buf {
			if j == i {
				assert.Equal(t, white, w)
			} else {
				assert.Zero(t, w)
			}
		}
	}
	assert.False(t, r.Step(buf, render.GRB))
}

func TestRGBChannels(t *testing.T) {
	r := NewRunner(Plan{Kind: RGBChannels})
	buf := make([]uint32, 3)
	want := []uint32{0x00FF00, 0xFF0000, 0x0000FF} // GRB words for R, G, B
	for _, w := range want {
		require.True(t, r.Step(buf, render.GRB))
		assert.Equal(t, []uint32{w, w, w}, buf)
	}
	assert.False(t, r.Step(buf, render.GRB))
}

func TestHalvesHold(t *testing.T) {
	r := NewRunner(Plan{Kind: Halves, Hold: 2})
	buf := make([]uint32, 4)
	for i := 0; i < 2; i++ {
		require.True(t, r.Step(buf, render.RGB))
		assert.Equal(t, []uint32{0xFF0000, 0xFF0000, 0x0000FF, 0x0000FF}, buf)
	}
	assert.False(t, r.Step(buf, render.RGB))
}

func TestUnknownKindEndsImmediately(t *testing.T) {
	r := NewRunner(Plan{Kind: None})
	assert.False(t, r.Step(make([]uint32, 2), render.GRB))
}
