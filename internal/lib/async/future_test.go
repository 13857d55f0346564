package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo_ResolvesWithValue(t *testing.T) {
	f := Go(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	value, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	// A resolved future keeps returning the same result
	value, err = f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestGo_ResolvesWithError(t *testing.T) {
	errFailed := errors.New("failed")
	f := Go(context.Background(), func(ctx context.Context) (string, error) {
		return "", errFailed
	})

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, errFailed)
}

func TestGo_RecoversPanic(t *testing.T) {
	f := Go(context.Background(), func(ctx context.Context) ([]int, error) {
		panic("bad state")
	})

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("future did not resolve after panic")
	}

	value, err := f.Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad state")
	assert.Nil(t, value)
}

func TestGo_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	f := Go(ctx, func(ctx context.Context) (string, error) {
		return ctx.Value(key{}).(string), nil
	})

	value, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "marker", value)
}

func TestAwait_ContextDone(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	f := Go(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolved(t *testing.T) {
	f := Resolved("done", nil)

	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future should be done immediately")
	}

	value, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", value)
}
