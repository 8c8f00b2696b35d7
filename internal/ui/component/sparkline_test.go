package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparklineBlocks(t *testing.T) {
	s := NewSparkline(4)
	assert.Equal(t, "▁▁▁▁", s.Blocks())

	for _, v := range []float64{1, 2, 3, 4, 5, 8} {
		s.Add(v)
	}
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, "▁▂▃█", s.Blocks())
	assert.Equal(t, "↗", s.Trend())
}

func TestSparklineFlatAndFalling(t *testing.T) {
	s := NewSparkline(8)
	s.Add(2)
	s.Add(2)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "▄", s.Blocks())
	assert.Equal(t, "→", s.Trend())

	s.Add(1)
	assert.Equal(t, "↘", s.Trend())
	assert.Equal(t, "█▁", s.Blocks())
}
