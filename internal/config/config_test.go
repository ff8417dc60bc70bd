package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsAuto(t *testing.T) {
	c := Config{StoreDriver: "auto", SQLitePath: "x.db", DayRangeFrom: -10, DayRangeTo: 90}
	require.NoError(t, c.ResolveDefaults())
	assert.Equal(t, "sqlite", c.StoreDriver)

	c = Config{StoreDriver: "auto", PostgresDSN: "postgres://x", DayRangeFrom: -10, DayRangeTo: 90}
	require.NoError(t, c.ResolveDefaults())
	assert.Equal(t, "postgres", c.StoreDriver)
}

func TestResolveDefaultsRejectsBadDriver(t *testing.T) {
	c := Config{StoreDriver: "etcd", DayRangeFrom: -10, DayRangeTo: 90}
	assert.Error(t, c.ResolveDefaults())

	c = Config{StoreDriver: "postgres", DayRangeFrom: -10, DayRangeTo: 90}
	assert.Error(t, c.ResolveDefaults(), "postgres without a DSN")
}

func TestResolveDefaultsRejectsBadDayRange(t *testing.T) {
	for _, rng := range [][2]int{{5, 90}, {-10, -1}, {10, 10}} {
		c := Config{StoreDriver: "memory", DayRangeFrom: rng[0], DayRangeTo: rng[1]}
		assert.Error(t, c.ResolveDefaults(), "range %v", rng)
	}
	c := Config{StoreDriver: "memory", DayRangeFrom: -10, DayRangeTo: 90}
	assert.NoError(t, c.ResolveDefaults())
}
