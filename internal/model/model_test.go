package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNights(t *testing.T) {
	in := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	out := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 2, Nights(in, out))

	// time of day is ignored
	require.Equal(t, 2, Nights(in.Add(15*time.Hour), out.Add(2*time.Hour)))
	require.Equal(t, 0, Nights(in, in))
	require.Equal(t, 31, Reservation{CheckIn: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)}.Nights())
}

func TestStringList_Scan(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["WiFi gratuito","Varanda"]`)))
	require.Equal(t, StringList{"WiFi gratuito", "Varanda"}, l)

	require.NoError(t, l.Scan(nil))
	require.Equal(t, StringList{}, l)

	require.NoError(t, l.Scan("null"))
	require.Equal(t, StringList{}, l)

	require.Error(t, l.Scan(42))
	require.Error(t, l.Scan([]byte(`{"a":1}`)))
}

func TestStringList_Value(t *testing.T) {
	v, err := StringList{"Lareira"}.Value()
	require.NoError(t, err)
	require.Equal(t, `["Lareira"]`, v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	require.Equal(t, "[]", v)
}
