package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "hh:mm", input: "09:30", want: "09:30"},
		{name: "with seconds", input: "17:00:00", want: "17:00"},
		{name: "end of day", input: "24:00", want: "24:00"},
		{name: "single digit hour", input: "9:30", wantErr: true},
		{name: "minutes out of range", input: "10:60", wantErr: true},
		{name: "past end of day", input: "24:30", wantErr: true},
		{name: "garbage", input: "noon", wantErr: true},
		{name: "non zero seconds", input: "10:00:15", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	start := TimeString("16:30")

	end, err := start.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("17:00"), end)

	_, err = TimeString("23:30").AddMinutes(60)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("09:30"))
	assert.False(t, TimeString("09:30").IsBefore("09:30"))
	assert.True(t, TimeString("18:00").IsAfter("17:59"))
	assert.Equal(t, 540, TimeString("09:00").Minutes())
	assert.Equal(t, -1, TimeString("bad").Minutes())
}

func TestTimeString_On(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	date := time.Date(2025, 3, 10, 22, 15, 0, 0, time.UTC)

	got := TimeString("09:30").On(date, loc)

	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, loc), got)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("08:15:00")))
	assert.Equal(t, TimeString("08:15"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("18:00"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}
