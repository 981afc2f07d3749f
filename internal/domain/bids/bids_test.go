package bids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)
	require.Len(t, b.PortZone, 5)
	require.Len(t, b.Delivered, 3)

	assert.Equal(t, "Newcastle", b.PortZone[0].PortZone)
	assert.True(t, b.PortZone[0].Price.Valid)
	assert.Equal(t, "322", b.PortZone[0].Price.Decimal.String())
	assert.False(t, b.PortZone[4].Price.Valid, "missing price stays empty")

	assert.Equal(t, "Moree", b.Delivered[0].Site)
	assert.Equal(t, 2026, b.Delivered[0].Date.Year())
}
