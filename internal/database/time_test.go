package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeScan(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 45, 500000000, time.UTC)

	cases := []interface{}{
		want,
		want.In(time.FixedZone("X", 3600)),
		"2024-03-01 12:30:45.5+00:00",
		"2024-03-01T12:30:45.5Z",
		[]byte("2024-03-01 13:30:45.5+01:00"),
	}
	for _, src := range cases {
		var got Time
		require.NoError(t, got.Scan(src), "%v", src)
		require.True(t, want.Equal(got.Time), "%v -> %v", src, got.Time)
		require.Equal(t, time.UTC, got.Time.Location())
	}

	var plain Time
	require.NoError(t, plain.Scan("2024-03-01 12:30:45"))
	require.Equal(t, time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC), plain.Time)

	var bad Time
	require.Error(t, bad.Scan("yesterday"))
	require.Error(t, bad.Scan(42))
}
