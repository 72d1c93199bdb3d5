package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-retail-dashboard/pkg/activity"
)

const (
	labelUploadIdle = "Upload Files"
	labelUploading  = "Uploading..."
)

var errUploadInProgress = errors.New("dashboard: upload already in progress")

// ValidateCSVFilename accepts only names ending in ".csv". The check is
// advisory; the backend has the final word.
func ValidateCSVFilename(name string) error {
	if !strings.HasSuffix(name, ".csv") {
		return fmt.Errorf("%w: %s", ErrInvalidFileType, name)
	}
	return nil
}

// ValidateUpload rejects requests the backend would refuse anyway: both the
// customers and products files are required and every file must be a CSV.
func ValidateUpload(req UploadRequest) error {
	if req.Customers == nil || req.Products == nil {
		return ErrMissingRequiredFiles
	}
	for _, file := range []*UploadFile{req.Customers, req.Products, req.Events} {
		if file == nil {
			continue
		}
		if err := ValidateCSVFilename(file.Filename); err != nil {
			return err
		}
	}
	return nil
}

// UploadFormState is what the submit control shows.
type UploadFormState struct {
	Disabled bool   `json:"disabled"`
	Label    string `json:"label"`
}

// UploadForm tracks the submit control while an upload is in flight.
type UploadForm struct {
	mu    sync.Mutex
	state UploadFormState
}

// NewUploadForm returns an enabled form.
func NewUploadForm() *UploadForm {
	return &UploadForm{state: UploadFormState{Label: labelUploadIdle}}
}

// Begin disables the control. It returns false when an upload is running.
func (f *UploadForm) Begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Disabled {
		return false
	}
	f.state = UploadFormState{Disabled: true, Label: labelUploading}
	return true
}

// End re-enables the control and restores its label.
func (f *UploadForm) End() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = UploadFormState{Label: labelUploadIdle}
}

// State returns the current control state.
func (f *UploadForm) State() UploadFormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// UploadResult is the outcome shown to the user after a submission.
type UploadResult struct {
	Notification Notification    `json:"notification"`
	Form         UploadFormState `json:"form"`
}

// SubmitUpload validates and posts the dataset files. Validation failures
// never reach the network.
func (s *Service) SubmitUpload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if err := ValidateUpload(req); err != nil {
		return s.uploadResult(NotificationError, UserMessage(err)), err
	}
	if s.opts.Client == nil {
		return s.uploadResult(NotificationError, MsgUploadErrorPrefix+errMissingClient.Error()), errMissingClient
	}
	if !s.upload.Begin() {
		return s.uploadResult(NotificationError, MsgUploadErrorPrefix+errUploadInProgress.Error()), errUploadInProgress
	}
	s.recordTelemetry(ctx, "dashboard.upload.start", map[string]any{"files": uploadFileNames(req)})

	err := s.postUpload(ctx, req)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.upload.failed", map[string]any{"error": err.Error()})
		return s.uploadResult(NotificationError, MsgUploadErrorPrefix+UserMessage(err)), err
	}

	s.recordTelemetry(ctx, "dashboard.upload.complete", map[string]any{"files": uploadFileNames(req)})
	s.emitActivity(ctx, activity.Event{
		Verb:       "dashboard.upload",
		ObjectType: "dataset",
		ObjectID:   req.Customers.Filename,
		Metadata:   map[string]any{"files": uploadFileNames(req)},
	})
	return s.uploadResult(NotificationSuccess, MsgUploadSuccess), nil
}

func (s *Service) postUpload(ctx context.Context, req UploadRequest) error {
	defer s.upload.End()
	return s.opts.Client.UploadDataset(ctx, req)
}

// UploadForm exposes the submit control state.
func (s *Service) UploadForm() UploadFormState {
	return s.upload.State()
}

func (s *Service) uploadResult(level NotificationLevel, message string) UploadResult {
	return UploadResult{
		Notification: Notification{Level: level, Message: message},
		Form:         s.upload.State(),
	}
}

func uploadFileNames(req UploadRequest) []string {
	var names []string
	for _, file := range []*UploadFile{req.Customers, req.Products, req.Events} {
		if file != nil {
			names = append(names, file.Filename)
		}
	}
	return names
}
