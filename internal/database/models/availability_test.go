package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAvailabilityLegacyEncodings(t *testing.T) {
	available := []interface{}{true, int64(1), 1, float64(1), "1", []byte("1"), " 1 ", Availability(true)}
	for _, v := range available {
		assert.True(t, ParseAvailability(v).Bool(), "%#v", v)
	}

	unavailable := []interface{}{nil, false, int64(0), 2, float64(0.5), "0", "true", "yes", []byte("0"), struct{}{}}
	for _, v := range unavailable {
		assert.False(t, ParseAvailability(v).Bool(), "%#v", v)
	}
}

func TestAvailabilityScanAndValue(t *testing.T) {
	var a Availability
	require.NoError(t, a.Scan(int64(1)))
	assert.True(t, a.Bool())

	v, err := a.Value()
	require.NoError(t, err)
	assert.Equal(t, true, v)

	require.NoError(t, a.Scan(nil))
	assert.False(t, a.Bool())
}

func TestAvailabilityJSON(t *testing.T) {
	var payload struct {
		IsAvailable Availability `json:"is_available"`
	}
	for _, body := range []string{`{"is_available":1}`, `{"is_available":true}`, `{"is_available":"1"}`} {
		require.NoError(t, json.Unmarshal([]byte(body), &payload))
		assert.True(t, payload.IsAvailable.Bool(), body)
	}

	require.NoError(t, json.Unmarshal([]byte(`{"is_available":0}`), &payload))
	assert.False(t, payload.IsAvailable.Bool())

	out, err := json.Marshal(Availability(true))
	require.NoError(t, err)
	assert.JSONEq(t, `true`, string(out))
}
