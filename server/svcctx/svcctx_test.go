//go:build unix

package svcctx

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCtxWithCancel(t *testing.T) {
	ctx, cancel := GetCtxWithCancel()

	assert.NotNil(t, ctx)
	assert.Equal(t, ctx, Get())

	again, _ := GetCtxWithCancel()
	assert.Equal(t, ctx, again)

	cancel()

	<-ctx.Done()
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
	assert.NotErrorIs(t, context.Cause(ctx), ErrInterrupted)
}

func TestWithSignalsSetsCause(t *testing.T) {
	ctx, cancel := WithSignals(context.Background(), syscall.SIGUSR1)
	defer cancel(nil)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled by the signal")
	}

	cause := context.Cause(ctx)
	assert.ErrorIs(t, cause, ErrInterrupted)

	var sigErr *SignalError

	require.True(t, errors.As(cause, &sigErr))
	assert.Equal(t, syscall.SIGUSR1, sigErr.Signal)
	assert.Equal(t, "interrupted by signal user defined signal 1", sigErr.Error())
}
