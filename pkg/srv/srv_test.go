package srv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	startErr error
	started  chan struct{}
	stopped  bool
}

func (f *fakeService) Start(ctx context.Context) error {
	close(f.started)
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeService) Shutdown(ctx context.Context) error {
	f.stopped = true
	return nil
}

func newFakeService(startErr error) *fakeService {
	return &fakeService{startErr: startErr, started: make(chan struct{})}
}

func TestShutdownOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := newFakeService(nil)
	services := []Service{svc, NewCleanup(func() error { return nil })}

	errs := StartServices(ctx, services)
	<-svc.started
	cancel()

	require.NoError(t, ShutdownServices(ctx, services, errs))
	assert.True(t, svc.stopped)
}

func TestStartFailureUnwinds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boom := errors.New("boom")
	failing := newFakeService(boom)
	healthy := newFakeService(nil)
	services := []Service{healthy, failing}

	errs := StartServices(ctx, services)

	// The failure surfaces without the context being cancelled, and
	// every service still gets shut down.
	err := ShutdownServices(ctx, services, errs)
	require.ErrorIs(t, err, boom)
	assert.True(t, failing.stopped)
	assert.True(t, healthy.stopped)
}

func TestCleanupRunsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	services := []Service{NewCleanup(func() error { ran = true; return nil })}

	errs := StartServices(ctx, services)
	require.NoError(t, ShutdownServices(ctx, services, errs))
	assert.True(t, ran)
}
