package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

type stubService struct {
	refreshed     []string
	viewRefreshes []string
	tracked       int
	trackErr      error
	uploadResult  dashboard.UploadResult
	uploadErr     error
}

func (s *stubService) ValidateSlot(slot string) error {
	if slot == "missing" {
		return errors.New("unknown slot")
	}
	return nil
}

func (s *stubService) Refresh(_ context.Context, slot string) {
	s.refreshed = append(s.refreshed, slot)
}

func (s *stubService) RefreshView(_ context.Context, view string) {
	s.viewRefreshes = append(s.viewRefreshes, view)
}

func (s *stubService) TrackEvent(context.Context, dashboard.TrackEventInput) (dashboard.Notification, error) {
	s.tracked++
	return dashboard.Notification{Message: dashboard.MsgEventTracked}, s.trackErr
}

func (s *stubService) SubmitUpload(context.Context, dashboard.UploadRequest) (dashboard.UploadResult, error) {
	return s.uploadResult, s.uploadErr
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}

func TestRefreshPanelCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewRefreshPanelCommand(service, telemetry)

	if err := cmd.Execute(context.Background(), RefreshPanelInput{Slot: dashboard.SlotProducts}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := cmd.Execute(context.Background(), RefreshPanelInput{View: dashboard.ViewReports}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.refreshed) != 1 || len(service.viewRefreshes) != 1 {
		t.Fatalf("expected one slot and one view refresh, got %v %v", service.refreshed, service.viewRefreshes)
	}
	if telemetry.calls != 2 {
		t.Fatalf("expected telemetry per refresh, got %d", telemetry.calls)
	}
}

func TestRefreshPanelCommandRejectsBadInput(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshPanelCommand(service, nil)
	if err := cmd.Execute(context.Background(), RefreshPanelInput{}); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if err := cmd.Execute(context.Background(), RefreshPanelInput{Slot: "missing"}); err == nil {
		t.Fatalf("expected error for unknown slot")
	}
	if len(service.refreshed) != 0 {
		t.Fatalf("expected no refresh, got %v", service.refreshed)
	}
	if err := NewRefreshPanelCommand(nil, nil).Execute(context.Background(), RefreshPanelInput{Slot: "x"}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestTrackEventCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewTrackEventCommand(service, nil)
	if err := cmd.Execute(context.Background(), dashboard.TrackEventInput{CustomerID: "C1", ProductID: "P1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	service.trackErr = errors.New("down")
	if err := cmd.Execute(context.Background(), dashboard.TrackEventInput{CustomerID: "C1", ProductID: "P1"}); err == nil {
		t.Fatalf("expected error")
	}
	if service.tracked != 2 {
		t.Fatalf("expected two track calls, got %d", service.tracked)
	}
}

func TestUploadDatasetCommandWritesResultOnFailure(t *testing.T) {
	service := &stubService{
		uploadResult: dashboard.UploadResult{Notification: dashboard.Notification{Message: "Error uploading files: bad"}},
		uploadErr:    errors.New("bad"),
	}
	cmd := NewUploadDatasetCommand(service, nil)
	var result dashboard.UploadResult
	if err := cmd.Execute(context.Background(), UploadDatasetInput{Result: &result}); err == nil {
		t.Fatalf("expected error")
	}
	if result.Notification.Message != "Error uploading files: bad" {
		t.Fatalf("expected failure notification, got %q", result.Notification.Message)
	}
}

func TestUploadDatasetCommandAgainstService(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	cmd := NewUploadDatasetCommand(service, nil)
	var result dashboard.UploadResult
	err := cmd.Execute(context.Background(), UploadDatasetInput{
		Request: dashboard.UploadRequest{Customers: &dashboard.UploadFile{Filename: "customers.csv"}},
		Result:  &result,
	})
	if !errors.Is(err, dashboard.ErrMissingRequiredFiles) {
		t.Fatalf("expected missing files error, got %v", err)
	}
	if result.Form.Disabled {
		t.Fatalf("form must stay enabled after a rejected upload")
	}
}

func TestStartDashboardCommandLoadsManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "views.yaml")
	manifest := "version: \"1\"\nviews:\n  - code: reports\n    interval: 1h\n"
	if err := os.WriteFile(path, []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	service := dashboard.NewService(dashboard.Options{})
	defer service.Close()
	telemetry := &stubTelemetry{}
	cmd := NewStartDashboardCommand(service, telemetry)

	if err := cmd.Execute(context.Background(), StartDashboardInput{ManifestPath: path, Views: []string{dashboard.ViewReports}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	def, _ := service.Registry().View(dashboard.ViewReports)
	if def.Interval.Hours() != 1 {
		t.Fatalf("expected manifest interval, got %s", def.Interval)
	}
	if telemetry.calls != 2 {
		t.Fatalf("expected manifest and start telemetry, got %d", telemetry.calls)
	}
}

func TestStartDashboardCommandRejectsOnDemandView(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	defer service.Close()
	cmd := NewStartDashboardCommand(service, nil)
	if err := cmd.Execute(context.Background(), StartDashboardInput{Views: []string{dashboard.ViewUpload}}); err == nil {
		t.Fatalf("expected error for on-demand view")
	}
}
