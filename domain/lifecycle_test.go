package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowPreset(t *testing.T) {
	flow, err := FlowPreset("kitchen")
	require.NoError(t, err)
	assert.Equal(t, KitchenFlow, flow)

	flow, err = FlowPreset("")
	require.NoError(t, err)
	assert.Equal(t, KitchenFlow, flow, "empty preset defaults to the kitchen flow")

	flow, err = FlowPreset("customer")
	require.NoError(t, err)
	assert.Equal(t, CustomerFlow, flow)

	_, err = FlowPreset("drive-through")
	assert.Error(t, err)
}

func TestFlowNext(t *testing.T) {
	next, ok := KitchenFlow.Next(StatusReceived)
	require.True(t, ok)
	assert.Equal(t, StatusPreparing, next)

	next, ok = KitchenFlow.Next(StatusPlating)
	require.True(t, ok)
	assert.Equal(t, StatusReady, next)
}

func TestFlowNextTerminalNoOp(t *testing.T) {
	next, ok := KitchenFlow.Next(StatusReady)
	assert.False(t, ok)
	assert.Equal(t, StatusReady, next, "advancing past terminal changes nothing")
}

func TestFlowNextUnknownStatus(t *testing.T) {
	next, ok := KitchenFlow.Next(StatusNew)
	assert.False(t, ok, "statuses outside the flow never advance")
	assert.Equal(t, StatusNew, next)
}

func TestFlowTerminal(t *testing.T) {
	assert.Equal(t, StatusReady, KitchenFlow.Terminal())
	assert.Equal(t, StatusReady, CustomerFlow.Terminal())
	assert.True(t, KitchenFlow.IsTerminal(StatusReady))
	assert.False(t, KitchenFlow.IsTerminal(StatusPlating))
}

func TestFlowLanes(t *testing.T) {
	orders := []Order{
		{ID: "o1", Status: StatusReceived},
		{ID: "o2", Status: StatusPreparing},
		{ID: "o3", Status: StatusReceived},
		{ID: "o4", Status: Status("mystery")},
	}

	lanes := KitchenFlow.Lanes(orders)

	require.Len(t, lanes, len(KitchenFlow), "every flow state gets a lane, populated or not")
	assert.Equal(t, []Order{orders[0], orders[2]}, lanes[StatusReceived], "relative order is preserved")
	assert.Len(t, lanes[StatusPreparing], 1)
	assert.Empty(t, lanes[StatusPlating])
	assert.Empty(t, lanes[StatusReady])
	assert.NotContains(t, lanes, Status("mystery"), "unknown states are left out, not guessed at")
}
