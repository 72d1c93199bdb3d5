package dashboard

import (
	"context"
	"strings"

	"github.com/goliatone/go-retail-dashboard/pkg/activity"
)

const (
	msgLoadingRecommendations = "Loading recommendations..."
	defaultEventType          = "view"
)

// LookupRecommendations loads recommendations for a customer into the
// recommendations panel. A blank id is rejected before any request is made;
// every other failure is reported through the returned panel.
func (s *Service) LookupRecommendations(ctx context.Context, customerID string) (Panel, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return Panel{}, ErrMissingCustomerID
	}
	def, ok := s.opts.Registry.View(ViewRecommendations)
	if !ok {
		return Panel{}, ErrUnknownView
	}
	if s.opts.Client == nil {
		return Panel{}, errMissingClient
	}

	cycle := s.cycles.Add(1)
	loading := s.basePanel(def, SlotRecommendations)
	loading.Message = msgLoadingRecommendations
	loading.Cycle = cycle
	s.publish(ctx, def, loading, "loading")

	set, err := s.opts.Client.FetchRecommendations(ctx, customerID)
	panel := s.basePanel(def, SlotRecommendations)
	panel.Cycle = cycle
	switch {
	case err != nil:
		panel.State = PanelError
		if payload, ok := AsPayloadError(err); ok {
			panel.Message = payload.Message
		} else {
			panel.Message = s.errorMessage(def, SlotRecommendations)
		}
		s.recordTelemetry(ctx, "dashboard.recommendations.failed", map[string]any{
			"customer_id": customerID,
			"error":       err.Error(),
		})
	default:
		panel.State = PanelReady
		panel.Fields = []Field{
			{Label: "Customer", Value: customerID},
			{Label: "Customer Segment", Value: set.Segment.SegmentTag},
			{Label: "Score", Value: FormatScore(set.Segment.Score)},
		}
		panel.Rows = recommendationRows(set.Recommendations)
		if len(panel.Rows) == 0 {
			panel.State = PanelEmpty
		}
		s.recordTelemetry(ctx, "dashboard.recommendations.loaded", map[string]any{
			"customer_id": customerID,
			"count":       len(set.Recommendations),
		})
		s.emitActivity(ctx, activity.Event{
			Verb:       "dashboard.recommendations.lookup",
			ObjectType: "customer",
			ObjectID:   customerID,
			Metadata: map[string]any{
				"segment": set.Segment.SegmentTag,
				"count":   len(set.Recommendations),
			},
		})
	}
	panel.Stale = false
	panel.UpdatedAt = s.opts.Now().UTC()
	s.publishPanel(ctx, def, panel, "refresh")
	return panel, nil
}

// recommendationRows renders one row per card: name, category, price,
// confidence and the product id used for tracking.
func recommendationRows(recs []Recommendation) [][]string {
	rows := make([][]string, len(recs))
	for i, rec := range recs {
		rows[i] = []string{
			rec.Product.Name,
			rec.Product.Category,
			FormatCurrency(rec.Product.Price),
			FormatScore(rec.ConfidenceScore),
			rec.Product.ProductID,
		}
	}
	return rows
}

// TrackEvent submits a customer interaction. Success raises a toast
// notification; failures are only recorded.
func (s *Service) TrackEvent(ctx context.Context, input TrackEventInput) (Notification, error) {
	input.CustomerID = strings.TrimSpace(input.CustomerID)
	input.ProductID = strings.TrimSpace(input.ProductID)
	input.EventType = strings.TrimSpace(input.EventType)
	if input.EventType == "" {
		input.EventType = defaultEventType
	}
	if input.CustomerID == "" || input.ProductID == "" {
		return Notification{}, ErrIncompleteEvent
	}
	if s.opts.Client == nil {
		return Notification{}, errMissingClient
	}
	if err := s.opts.Client.TrackEvent(ctx, input); err != nil {
		s.recordTelemetry(ctx, "dashboard.event.track_failed", map[string]any{
			"customer_id": input.CustomerID,
			"product_id":  input.ProductID,
			"event_type":  input.EventType,
			"error":       err.Error(),
		})
		return Notification{}, err
	}

	note := Notification{Level: NotificationSuccess, Message: MsgEventTracked}
	s.notify(ctx, PanelEvent{
		View:         ViewRecommendations,
		Slot:         SlotRecommendations,
		Reason:       "event_tracked",
		Notification: &note,
	})
	s.recordTelemetry(ctx, "dashboard.event.tracked", map[string]any{
		"customer_id": input.CustomerID,
		"product_id":  input.ProductID,
		"event_type":  input.EventType,
	})
	s.emitActivity(ctx, activity.Event{
		Verb:       "dashboard.event.track",
		ActorID:    input.CustomerID,
		ObjectType: "product",
		ObjectID:   input.ProductID,
		Metadata: map[string]any{
			"customer_id": input.CustomerID,
			"event_type":  input.EventType,
		},
	})
	return note, nil
}
