package team

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapacityAcceptsStringOrNumber(t *testing.T) {
	var fromString, fromNumber CreateTeamRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Nova","capacity":"4"}`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Nova","capacity":4}`), &fromNumber))

	assert.Equal(t, Capacity("4"), fromString.Capacity)
	assert.Equal(t, fromString, fromNumber)

	var bad CreateTeamRequest
	assert.Error(t, json.Unmarshal([]byte(`{"capacity":true}`), &bad))
}
