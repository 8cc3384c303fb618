package bindless

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionManagerSubmitAndAwait(t *testing.T) {
	platform := newFakePlatform()
	reg := newTestRegistry()
	em, err := NewExecutionManager(reg, platform, 4, nil)
	require.NoError(t, err)
	defer em.Shutdown()

	pending, err := em.SubmitForWaiting(context.Background(), "commands", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pending.Await(ctx))
	assert.True(t, pending.Poll())
}

func TestNullPendingExecutionResolvesImmediately(t *testing.T) {
	p := NullPendingExecution()
	assert.True(t, p.Poll())
	assert.NoError(t, p.Await(context.Background()))
}

func TestExecutionManagerShutdownPanicsOnLateSubmit(t *testing.T) {
	platform := newFakePlatform()
	reg := newTestRegistry()
	em, err := NewExecutionManager(reg, platform, 4, nil)
	require.NoError(t, err)
	em.Shutdown()

	assert.Panics(t, func() {
		_, _ = em.SubmitForWaiting(context.Background(), "commands", nil)
	})
}
