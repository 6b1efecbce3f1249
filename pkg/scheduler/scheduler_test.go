package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	for _, spec := range []string{"@every 1h", "@hourly", "0 */5 * * *", "*/10 * * * * *"} {
		assert.NoError(t, Validate(spec), spec)
	}
	assert.Error(t, Validate("every hour"))
	assert.Error(t, Validate("* * *"))
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("nonsense", func(context.Context) {}, nil)
	assert.Error(t, err)
}

func TestRunTriggersJob(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@every 1s", func(ctx context.Context) {
		if ctx != nil {
			runs.Add(1)
		}
	}, nil)
	require.NoError(t, err)
	assert.True(t, s.Next().IsZero())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestRunRecoversPanics(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@every 1s", func(context.Context) {
		runs.Add(1)
		panic("boom")
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}
