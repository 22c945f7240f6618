package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDualSplit(t *testing.T) {
	r := Ring{Geometry: Dual, Count: 300, Width: 300, Height: 300}
	pos, err := r.Positions()
	require.NoError(t, err)
	require.Len(t, pos, 300)

	half := r.Count / 2
	leftRows := map[int]bool{}
	for k := 0; k < half; k++ {
		assert.Equal(t, image.Pt(0, k), pos[k])
		leftRows[k] = true
	}
	for k := half; k < r.Count; k++ {
		assert.Equal(t, image.Pt(299, k-half), pos[k])
	}
	// left and right halves sample different columns
	for k := half; k < r.Count; k++ {
		assert.NotEqual(t, pos[k].X, pos[k-half].X)
	}
}

func TestDualRightInset(t *testing.T) {
	r := Ring{Geometry: Dual, Count: 10, Width: 20, Height: 5, RightInset: 3}
	pos, err := r.Positions()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(16, 0), pos[5])
	assert.Equal(t, image.Pt(16, 4), pos[9])
}

func TestSingleEdges(t *testing.T) {
	cases := []struct {
		Edge    Edge
		Reverse bool
		First   image.Point
		Last    image.Point
	}{
		{Bottom, false, image.Pt(0, 9), image.Pt(9, 9)},
		{Bottom, true, image.Pt(9, 9), image.Pt(0, 9)},
		{Top, false, image.Pt(0, 0), image.Pt(9, 0)},
		{Left, false, image.Pt(0, 0), image.Pt(0, 9)},
		{Right, true, image.Pt(9, 9), image.Pt(9, 0)},
	}
	for _, c := range cases {
		t.Run(string(c.Edge), func(t *testing.T) {
			r := Ring{Geometry: Single, Edge: c.Edge, Count: 10, Width: 10, Height: 10, Reverse: c.Reverse}
			pos, err := r.Positions()
			require.NoError(t, err)
			assert.Equal(t, c.First, pos[0])
			assert.Equal(t, c.Last, pos[9])
		})
	}
}

func TestValidateRejects(t *testing.T) {
	bad := []Ring{
		{Geometry: Single, Edge: Bottom, Count: 11, Width: 10, Height: 10},
		{Geometry: Single, Edge: "diagonal", Count: 1, Width: 10, Height: 10},
		{Geometry: Dual, Count: 22, Width: 10, Height: 10},
		{Geometry: Dual, Count: 4, Width: 10, Height: 10, RightInset: 9},
		{Geometry: "spiral", Count: 4, Width: 10, Height: 10},
		{Geometry: Single, Edge: Bottom, Count: 0, Width: 10, Height: 10},
		{Geometry: Single, Edge: Bottom, Count: 1, Width: 0, Height: 10},
	}
	for _, r := range bad {
		_, err := r.Positions()
		assert.Error(t, err, "%+v", r)
	}
}
