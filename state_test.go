package pgwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Closed", StateClosed.String())
	assert.Equal(t, "Connecting", StateConnecting.String())
	assert.Equal(t, "Ready", StateReady.String())
	assert.Equal(t, "Executing", StateExecuting.String())
	assert.Equal(t, "CopyIn", StateCopyIn.String())
	assert.Equal(t, "CopyOut", StateCopyOut.String())
	assert.Equal(t, "Broken", StateBroken.String())
	assert.Equal(t, "invalid", State(99).String())
}

func TestTransitionLegal(t *testing.T) {
	t.Parallel()

	legal := []struct{ from, to State }{
		{StateClosed, StateConnecting},
		{StateConnecting, StateReady},
		{StateReady, StateExecuting},
		{StateReady, StateClosed},
		{StateExecuting, StateReady},
		{StateExecuting, StateCopyIn},
		{StateExecuting, StateCopyOut},
		{StateCopyIn, StateReady},
		{StateCopyOut, StateReady},
	}
	for _, tt := range legal {
		assert.Truef(t, transitionLegal(tt.from, tt.to), "%s -> %s should be legal", tt.from, tt.to)
	}

	illegal := []struct{ from, to State }{
		{StateClosed, StateReady},
		{StateReady, StateCopyIn},
		{StateCopyIn, StateCopyOut},
		{StateBroken, StateReady},
		{StateConnecting, StateExecuting},
	}
	for _, tt := range illegal {
		assert.Falsef(t, transitionLegal(tt.from, tt.to), "%s -> %s should be illegal", tt.from, tt.to)
	}

	// Broken is reachable from anywhere
	for _, from := range []State{StateClosed, StateConnecting, StateReady, StateExecuting, StateCopyIn, StateCopyOut, StateBroken} {
		assert.Truef(t, transitionLegal(from, StateBroken), "%s -> Broken should be legal", from)
	}
}
