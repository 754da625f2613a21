package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	total, err := ComputeTotal(100, day("2024-01-10"), day("2024-01-13"))
	require.NoError(t, err)
	assert.Equal(t, int64(300), total)

	total, err = ComputeTotal(100, at("2024-01-10T18:00"), at("2024-01-11T06:00"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), total, "a 12 hour stay is billed as one night")

	total, err = ComputeTotal(0, day("2024-01-10"), day("2024-01-11"))
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestComputeTotalRejectsNonPositiveNights(t *testing.T) {
	_, err := ComputeTotal(100, day("2024-01-10"), day("2024-01-10"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = ComputeTotal(100, day("2024-01-12"), day("2024-01-10"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestComputeTotalRejectsNegativeRate(t *testing.T) {
	_, err := ComputeTotal(-1, day("2024-01-10"), day("2024-01-11"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
