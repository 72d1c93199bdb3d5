package analytics

import (
	"context"
	"strings"
	"testing"

	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

func TestMockClientUnknownCustomer(t *testing.T) {
	client := NewMockClient(DemoData())
	_, err := client.FetchRecommendations(context.Background(), "C404")
	payload, ok := dashboard.AsPayloadError(err)
	if !ok || payload.Message != "Customer not found" {
		t.Fatalf("expected payload error, got %v", err)
	}
}

func TestMockClientRecordsInteractions(t *testing.T) {
	client := NewMockClient(DemoData())
	if err := client.TrackEvent(context.Background(), dashboard.TrackEventInput{CustomerID: "C001", ProductID: "P010", EventType: "view"}); err != nil {
		t.Fatalf("track: %v", err)
	}
	err := client.UploadDataset(context.Background(), dashboard.UploadRequest{
		Customers: &dashboard.UploadFile{Filename: "customers.csv", Body: strings.NewReader("a")},
		Products:  &dashboard.UploadFile{Filename: "products.csv", Body: strings.NewReader("b")},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(client.Tracked()) != 1 || len(client.Uploaded()) != 2 {
		t.Fatalf("unexpected records %v %v", client.Tracked(), client.Uploaded())
	}
}

func TestMockClientDrivesDashboardService(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{Client: NewMockClient(DemoData())})
	service.RefreshView(context.Background(), dashboard.ViewReports)

	panel, ok := service.Panel(dashboard.SlotProducts)
	if !ok || panel.State != dashboard.PanelReady || !panel.HasChart() {
		t.Fatalf("expected rendered products chart, got %#v", panel)
	}
	if !strings.Contains(panel.ChartHTML, panel.ContainerID) {
		t.Fatalf("expected container id in chart html")
	}
}
