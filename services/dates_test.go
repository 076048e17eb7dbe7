package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDateFull(t *testing.T) {
	got := NormalizeDate("2024-03-15")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *got)
}

func TestNormalizeDateYearMonth(t *testing.T) {
	got := NormalizeDate("2024-03")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestNormalizeDateYearOnly(t *testing.T) {
	got := NormalizeDate("2024")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestNormalizeDateEmpty(t *testing.T) {
	assert.Nil(t, NormalizeDate(""))
}

func TestNormalizeDateGarbage(t *testing.T) {
	assert.Nil(t, NormalizeDate("March 2024"))
	assert.Nil(t, NormalizeDate("15.03.2024"))
}
