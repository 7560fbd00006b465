package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"careportal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Day
	}{
		{"2024-01-15", domain.NewDay(2024, time.January, 15)},
		{" 2024-01-15 ", domain.NewDay(2024, time.January, 15)},
		{"2024-01-15T23:30:00Z", domain.NewDay(2024, time.January, 15)},
		{"2024-01-15T00:30:00.123+09:00", domain.NewDay(2024, time.January, 15)},
	}
	for _, tc := range tests {
		got, err := domain.ParseDay(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, tc.want.Equal(got), tc.in)
	}

	for _, bad := range []string{"", "yesterday", "2024-13-01", "15/01/2024"} {
		_, err := domain.ParseDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestDayJSON(t *testing.T) {
	var v struct {
		A domain.Day `json:"a"`
		B domain.Day `json:"b"`
		C domain.Day `json:"c"`
		D domain.Day `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a":"2024-07-01","b":"not a date","c":null,"d":12}`), &v)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", v.A.String())
	assert.True(t, v.B.IsZero())
	assert.True(t, v.C.IsZero())
	assert.True(t, v.D.IsZero())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2024-07-01","b":null,"c":null,"d":null}`, string(out))
}

func TestDayScanValue(t *testing.T) {
	var d domain.Day
	require.NoError(t, d.Scan(time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-09", d.String())

	require.NoError(t, d.Scan([]byte("2023-12-31")))
	assert.Equal(t, "2023-12-31", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := domain.NewDay(2024, time.February, 29).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", v)

	v, err = domain.Day{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDayFormatZero(t *testing.T) {
	assert.Equal(t, "", domain.Day{}.Format("Jan 02"))
	assert.Equal(t, "", domain.Day{}.String())
	assert.Equal(t, "Feb 05", domain.NewDay(2024, time.February, 5).Format("Jan 02"))
}
