package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHandleFinishOnce(t *testing.T) {
	h := newRunHandle()
	assert.Nil(t, h.Err())

	h.finish(errors.New("first"))
	h.finish(errors.New("second"))

	<-h.Done()
	require.EqualError(t, h.Err(), "first")
}

func TestRunHandleWaitReturnsRunError(t *testing.T) {
	h := newRunHandle()
	go func() {
		time.Sleep(10 * time.Millisecond)
		h.finish(nil)
	}()
	require.NoError(t, h.Wait(context.Background()))
}

func TestRunHandleWaitHonorsContext(t *testing.T) {
	h := newRunHandle()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := h.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunHandleCancelIsSticky(t *testing.T) {
	h := newRunHandle()
	assert.False(t, h.Cancelled())
	h.Cancel()
	h.Cancel()
	assert.True(t, h.Cancelled())

	h.finish(nil)
	assert.True(t, h.Cancelled())
}
