package losses_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/ezoic/longtail/losses"
	"github.com/ezoic/longtail/pkg/errors"
)

func TestEffectiveNumberWeights(t *testing.T) {
	w, err := losses.EffectiveNumberWeights(cifarLikeCounts, 0)
	require.NoError(t, err)
	for _, v := range w {
		assert.InDelta(t, 1, v, 1e-12)
	}

	w, err = losses.EffectiveNumberWeights(cifarLikeCounts, 0.9999)
	require.NoError(t, err)
	assert.InDelta(t, float64(len(cifarLikeCounts)), floats.Sum(w), 1e-9)
	for j := 1; j < len(w); j++ {
		assert.Greater(t, w[j], w[j-1], "class %d", j)
	}

	loss, err := losses.NewLDAMLoss(cifarLikeCounts, losses.WithClassWeights(w))
	require.NoError(t, err)
	assert.Equal(t, w, loss.ClassWeights())
}

func TestEffectiveNumberWeights_Errors(t *testing.T) {
	_, err := losses.EffectiveNumberWeights(nil, 0.9)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	for _, beta := range []float64{-0.1, 1, 2} {
		_, err = losses.EffectiveNumberWeights([]int{10}, beta)
		var valErr *errors.ValidationError
		require.True(t, errors.As(err, &valErr), "beta %v", beta)
		assert.Equal(t, "beta", valErr.ParamName)
	}

	_, err = losses.EffectiveNumberWeights([]int{10, 0}, 0.9)
	assert.True(t, errors.Is(err, errors.ErrZeroCount))
}
