package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-retail-dashboard/components/dashboard"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/queries"
)

const maxUploadMemory = 32 << 20

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Refresh         gocommand.Commander[commands.RefreshPanelInput]
	Track           gocommand.Commander[dashboard.TrackEventInput]
	Upload          gocommand.Commander[commands.UploadDatasetInput]
	Panel           gocommand.Querier[queries.PanelInput, dashboard.Panel]
	Recommendations gocommand.Querier[queries.RecommendationsInput, dashboard.Panel]
}

// HandleRefresh accepts {"slot"} or {"view"} and refreshes it.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshPanelInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Refresh.Execute(r.Context(), payload); err != nil {
		http.Error(w, dashboard.UserMessage(err), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandlePanel returns the current panel of a slot.
func (h *Handlers) HandlePanel(w http.ResponseWriter, r *http.Request, slot string) {
	panel, err := h.Panel.Query(r.Context(), queries.PanelInput{Slot: slot})
	if err != nil {
		http.Error(w, dashboard.UserMessage(err), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

// HandleTrackEvent records a customer interaction and answers with the toast text.
func (h *Handlers) HandleTrackEvent(w http.ResponseWriter, r *http.Request) {
	var payload dashboard.TrackEventInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Track.Execute(r.Context(), payload); err != nil {
		http.Error(w, dashboard.UserMessage(err), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Notification{Level: dashboard.NotificationSuccess, Message: dashboard.MsgEventTracked})
}

// HandleRecommendations looks up a customer's recommendations panel.
func (h *Handlers) HandleRecommendations(w http.ResponseWriter, r *http.Request, customerID string) {
	panel, err := h.Recommendations.Query(r.Context(), queries.RecommendationsInput{CustomerID: customerID})
	if err != nil {
		http.Error(w, dashboard.UserMessage(err), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

// HandleUpload accepts the multipart dataset form (customers, products and
// optional events) and answers with the upload result.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, closeFiles, err := UploadRequestFromForm(r.MultipartForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer closeFiles()

	var result dashboard.UploadResult
	err = h.Upload.Execute(r.Context(), commands.UploadDatasetInput{Request: req, Result: &result})
	status := http.StatusOK
	if err != nil {
		status = StatusFor(err)
	}
	writeJSON(w, status, result)
}

// UploadRequestFromForm opens the dataset files of a parsed multipart form.
// Missing fields are left nil so validation can report them.
func UploadRequestFromForm(form *multipart.Form) (dashboard.UploadRequest, func(), error) {
	var req dashboard.UploadRequest
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	if form == nil {
		return req, closeAll, nil
	}
	targets := map[string]**dashboard.UploadFile{
		"customers": &req.Customers,
		"products":  &req.Products,
		"events":    &req.Events,
	}
	for field, target := range targets {
		headers := form.File[field]
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			closeAll()
			return dashboard.UploadRequest{}, func() {}, fmt.Errorf("httpapi: open %s: %w", field, err)
		}
		opened = append(opened, f)
		*target = &dashboard.UploadFile{Filename: headers[0].Filename, Body: f}
	}
	return req, closeAll, nil
}

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, commands.ErrInvalidInput),
		errors.Is(err, dashboard.ErrMissingCustomerID),
		errors.Is(err, dashboard.ErrMissingRequiredFiles),
		errors.Is(err, dashboard.ErrInvalidFileType),
		errors.Is(err, dashboard.ErrIncompleteEvent):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnknownSlot), errors.Is(err, dashboard.ErrUnknownView):
		return http.StatusNotFound
	}
	if payload, ok := dashboard.AsPayloadError(err); ok {
		if payload.Status >= 400 && payload.Status < 500 {
			return payload.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
