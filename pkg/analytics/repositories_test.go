package analytics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

type countingReports struct {
	*MockClient
	calls atomic.Int32
	err   error
}

func (c *countingReports) FetchLatestReport(ctx context.Context) (dashboard.Report, error) {
	c.calls.Add(1)
	if c.err != nil {
		return dashboard.Report{}, c.err
	}
	return c.MockClient.FetchLatestReport(ctx)
}

func TestSharedReportClientCachesWithinTTL(t *testing.T) {
	inner := &countingReports{MockClient: NewMockClient(DemoData())}
	shared := NewSharedReportClient(inner, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	shared.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := shared.FetchLatestReport(context.Background()); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if inner.calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", inner.calls.Load())
	}

	now = now.Add(2 * time.Minute)
	if _, err := shared.FetchLatestReport(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if inner.calls.Load() != 2 {
		t.Fatalf("expected refetch after ttl, got %d", inner.calls.Load())
	}
}

func TestSharedReportClientDoesNotCacheFailures(t *testing.T) {
	inner := &countingReports{MockClient: NewMockClient(DemoData()), err: errors.New("timeout")}
	shared := NewSharedReportClient(inner, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := shared.FetchLatestReport(context.Background()); err == nil {
			t.Fatalf("expected error")
		}
	}
	if inner.calls.Load() != 2 {
		t.Fatalf("expected failures to reach upstream each time, got %d", inner.calls.Load())
	}
}

func TestSharedReportClientInvalidatesOnUpload(t *testing.T) {
	inner := &countingReports{MockClient: NewMockClient(DemoData())}
	shared := NewSharedReportClient(inner, time.Hour)

	_, _ = shared.FetchLatestReport(context.Background())
	err := shared.UploadDataset(context.Background(), dashboard.UploadRequest{
		Customers: &dashboard.UploadFile{Filename: "customers.csv"},
		Products:  &dashboard.UploadFile{Filename: "products.csv"},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	_, _ = shared.FetchLatestReport(context.Background())
	if inner.calls.Load() != 2 {
		t.Fatalf("expected refetch after upload, got %d", inner.calls.Load())
	}
}

// gatedReports holds the first fetch until release closes, then reports the
// caller's context error if it was cancelled meanwhile.
type gatedReports struct {
	*MockClient
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (c *gatedReports) FetchLatestReport(ctx context.Context) (dashboard.Report, error) {
	if c.calls.Add(1) == 1 {
		close(c.started)
		<-c.release
		if err := ctx.Err(); err != nil {
			return dashboard.Report{}, err
		}
	}
	return c.MockClient.FetchLatestReport(ctx)
}

func TestSharedReportClientWaiterRetriesAfterLeaderCancelled(t *testing.T) {
	inner := &gatedReports{
		MockClient: NewMockClient(DemoData()),
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	shared := NewSharedReportClient(inner, time.Minute)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := shared.FetchLatestReport(leaderCtx)
		leaderErr <- err
	}()
	<-inner.started

	type result struct {
		report dashboard.Report
		err    error
	}
	waiter := make(chan result, 1)
	go func() {
		report, err := shared.FetchLatestReport(context.Background())
		waiter <- result{report, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelLeader()
	close(inner.release)

	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected leader to see its own cancellation, got %v", err)
	}
	select {
	case got := <-waiter:
		if got.err != nil {
			t.Fatalf("waiter inherited leader error: %v", got.err)
		}
		if got.report.Type == "" {
			t.Fatalf("waiter got an empty report")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("waiter never returned")
	}
	if inner.calls.Load() != 2 {
		t.Fatalf("expected the waiter to fetch again, got %d upstream calls", inner.calls.Load())
	}
}
