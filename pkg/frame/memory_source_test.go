package frame

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFrame() Frame {
	return Frame{ImageBytes: bytes.Repeat([]byte{0xAB}, MinFrameBytes+1)}
}

func TestMemorySource_CaptureCyclesAndRepeatsLast(t *testing.T) {
	src := NewMemorySource(validFrame(), validFrame())
	ctx := context.Background()

	f1, err := src.Capture(ctx)
	require.NoError(t, err)
	assert.False(t, f1.Timestamp.IsZero())

	_, err = src.Capture(ctx)
	require.NoError(t, err)

	// Exhausted: repeats the final frame rather than erroring.
	_, err = src.Capture(ctx)
	require.NoError(t, err)
}

func TestMemorySource_CaptureRejectsUndersizedFrame(t *testing.T) {
	src := NewMemorySource(Frame{ImageBytes: bytes.Repeat([]byte{1}, MinFrameBytes-1)})
	_, err := src.Capture(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrameUnavailable)
}

func TestMemorySource_FailNextCaptures(t *testing.T) {
	src := NewMemorySource(validFrame())
	src.FailNextCaptures(2)

	_, err := src.Capture(context.Background())
	assert.ErrorIs(t, err, ErrFrameUnavailable)
	_, err = src.Capture(context.Background())
	assert.ErrorIs(t, err, ErrFrameUnavailable)
	_, err = src.Capture(context.Background())
	assert.NoError(t, err)
}

func TestMemorySource_LoseAdapterIsTerminal(t *testing.T) {
	src := NewMemorySource(validFrame())
	src.LoseAdapter()

	_, err := src.Capture(context.Background())
	assert.ErrorIs(t, err, ErrAdapterLost)
	err = src.PressAndRelease(context.Background(), ButtonA, 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrAdapterLost)
}

func TestMemorySource_PressAndReleaseRejectsWait(t *testing.T) {
	src := NewMemorySource(validFrame())
	err := src.PressAndRelease(context.Background(), ButtonWait, 100*time.Millisecond)
	require.Error(t, err)
}

func TestMemorySource_PressLogRecordsOrder(t *testing.T) {
	src := NewMemorySource(validFrame())
	ctx := context.Background()
	require.NoError(t, src.PressAndRelease(ctx, ButtonUp, InputSettleDelay))
	require.NoError(t, src.PressAndRelease(ctx, ButtonA, InputSettleDelay))

	assert.Equal(t, []Button{ButtonUp, ButtonA}, src.PressLog())
}

func TestMemorySource_ReadMemoryUnsupportedByDefault(t *testing.T) {
	src := NewMemorySource(validFrame())
	_, err := src.ReadMemory(context.Background(), 0, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestMemorySource_ReadMemoryAfterSeed(t *testing.T) {
	src := NewMemorySource(validFrame())
	src.SetMemory([]byte{1, 2, 3, 4, 5})
	got, err := src.ReadMemory(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, got)
}

func TestMemorySource_SaveLoadStateRoundTrip(t *testing.T) {
	src := NewMemorySource(validFrame())
	ctx := context.Background()
	require.NoError(t, src.LoadState(ctx, []byte("checkpoint-1")))
	got, err := src.SaveState(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("checkpoint-1"), got)
}
