package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinuteOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    MinuteOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "08:00", want: 480},
		{in: "10:45", want: 645},
		{in: "24:00", want: MinutesPerDay},
		{in: "9:30", want: 570},
		{in: "24:01", wantErr: true},
		{in: "10:60", wantErr: true},
		{in: "10-00", wantErr: true},
		{in: "10:5", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMinuteOfDay(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMinuteOfDay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinuteOfDay_StringAndJSON(t *testing.T) {
	m := MustMinuteOfDay("07:05")
	assert.Equal(t, "07:05", m.String())

	data, err := json.Marshal(struct {
		Start MinuteOfDay `json:"start"`
	}{Start: m})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"07:05"}`, string(data))

	var decoded struct {
		Start MinuteOfDay `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"18:30"}`), &decoded))
	assert.Equal(t, MinuteOfDay(18*60+30), decoded.Start)

	assert.Error(t, json.Unmarshal([]byte(`{"start":630}`), &decoded))
}

func TestMinuteOfDay_OnDate(t *testing.T) {
	loc := time.FixedZone("test", 3*3600)
	date := time.Date(2026, 10, 19, 15, 20, 0, 0, loc)

	got := MustMinuteOfDay("10:15").OnDate(date)
	assert.Equal(t, time.Date(2026, 10, 19, 10, 15, 0, 0, loc), got)
}

func TestMinuteOfDay_Scan(t *testing.T) {
	var m MinuteOfDay
	require.NoError(t, m.Scan(int64(600)))
	assert.Equal(t, MinuteOfDay(600), m)

	require.NoError(t, m.Scan([]byte("615")))
	assert.Equal(t, MinuteOfDay(615), m)

	assert.Error(t, m.Scan(1.5))
}
