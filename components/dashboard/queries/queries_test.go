package queries

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

type stubPanelService struct {
	calls int
}

func (s *stubPanelService) PanelFor(slot string) (dashboard.Panel, error) {
	s.calls++
	if slot == "missing" {
		return dashboard.Panel{}, errors.New("unknown slot")
	}
	return dashboard.Panel{Slot: slot, State: dashboard.PanelReady}, nil
}

func (s *stubPanelService) Panels(view string) ([]dashboard.Panel, error) {
	s.calls++
	return []dashboard.Panel{{View: view}}, nil
}

func (s *stubPanelService) LookupRecommendations(_ context.Context, customerID string) (dashboard.Panel, error) {
	s.calls++
	if customerID == "" {
		return dashboard.Panel{}, dashboard.ErrMissingCustomerID
	}
	return dashboard.Panel{Slot: dashboard.SlotRecommendations}, nil
}

func TestPanelQuery(t *testing.T) {
	service := &stubPanelService{}
	query := NewPanelQuery(service)
	panel, err := query.Query(context.Background(), PanelInput{Slot: dashboard.SlotProducts})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if panel.Slot != dashboard.SlotProducts || service.calls != 1 {
		t.Fatalf("unexpected panel %#v", panel)
	}
	if _, err := query.Query(context.Background(), PanelInput{Slot: "missing"}); err == nil {
		t.Fatalf("expected error for unknown slot")
	}
}

func TestViewPanelsQuery(t *testing.T) {
	service := &stubPanelService{}
	query := NewViewPanelsQuery(service)
	panels, err := query.Query(context.Background(), ViewPanelsInput{View: dashboard.ViewReports})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(panels) != 1 || panels[0].View != dashboard.ViewReports {
		t.Fatalf("unexpected panels %#v", panels)
	}
}

func TestRecommendationsQuery(t *testing.T) {
	service := &stubPanelService{}
	query := NewRecommendationsQuery(service)
	if _, err := query.Query(context.Background(), RecommendationsInput{}); !errors.Is(err, dashboard.ErrMissingCustomerID) {
		t.Fatalf("expected missing id error, got %v", err)
	}
}

func TestPanelQueryAgainstService(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	panel, err := NewPanelQuery(service).Query(context.Background(), PanelInput{Slot: dashboard.SlotHealth})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if panel.State != dashboard.PanelLoading {
		t.Fatalf("expected loading panel before the first refresh, got %s", panel.State)
	}
}
