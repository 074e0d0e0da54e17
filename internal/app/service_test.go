package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	stopped  atomic.Bool
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeService) Stop(ctx context.Context) error {
	f.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllOnServiceFailure(t *testing.T) {
	failed := &fakeService{name: "notify-worker", startErr: errors.New("broker unreachable")}
	healthy := &fakeService{name: httpServiceName}

	runner := NewRunner(healthy, failed)
	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "broker unreachable" {
		t.Fatalf("run should surface service error, got %v", err)
	}
	if !healthy.stopped.Load() || !failed.stopped.Load() {
		t.Fatal("all services should be stopped after one fails")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	svc := &fakeService{name: httpServiceName}
	runner := NewRunner(svc)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if !svc.stopped.Load() {
		t.Fatal("service should be stopped after cancel")
	}
}

func TestRunnerRejectsEmpty(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatal("empty runner should error")
	}
}

func TestHTTPServiceName(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:0", nil)
	if svc.Name() != "gift-card-api" {
		t.Fatalf("service name want gift-card-api got %s", svc.Name())
	}
}
