package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

// SharedReportClient lets the home and reports views share one fetch of the
// latest report for a short window. Failed fetches are not shared.
type SharedReportClient struct {
	Client
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	report   dashboard.Report
	loadedAt time.Time
	inflight *reportCall
}

type reportCall struct {
	done   chan struct{}
	report dashboard.Report
	err    error
}

// NewSharedReportClient wraps client. A non-positive ttl still merges
// concurrent calls but caches nothing afterwards.
func NewSharedReportClient(client Client, ttl time.Duration) *SharedReportClient {
	return &SharedReportClient{Client: client, ttl: ttl, now: time.Now}
}

// FetchLatestReport returns the cached report while it is fresh.
func (c *SharedReportClient) FetchLatestReport(ctx context.Context) (dashboard.Report, error) {
	c.mu.Lock()
	if !c.loadedAt.IsZero() && c.now().Sub(c.loadedAt) < c.ttl {
		report := c.report
		c.mu.Unlock()
		return report, nil
	}
	if call := c.inflight; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			// The leader's own cancellation says nothing about this caller.
			if isContextErr(call.err) && ctx.Err() == nil {
				return c.FetchLatestReport(ctx)
			}
			return call.report, call.err
		case <-ctx.Done():
			return dashboard.Report{}, ctx.Err()
		}
	}
	call := &reportCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	call.report, call.err = c.Client.FetchLatestReport(ctx)

	c.mu.Lock()
	c.inflight = nil
	if call.err == nil {
		c.report = call.report
		c.loadedAt = c.now()
	}
	c.mu.Unlock()
	close(call.done)
	return call.report, call.err
}

// Invalidate drops the cached report, e.g. after a dataset upload.
func (c *SharedReportClient) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadedAt = time.Time{}
}

// UploadDataset forwards the upload and invalidates the cached report.
func (c *SharedReportClient) UploadDataset(ctx context.Context, req dashboard.UploadRequest) error {
	err := c.Client.UploadDataset(ctx, req)
	if err == nil {
		c.Invalidate()
	}
	return err
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
