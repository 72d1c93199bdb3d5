package dashboard

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-retail-dashboard/pkg/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvFile(name string) *UploadFile {
	return &UploadFile{Filename: name, Body: strings.NewReader("id\n1\n")}
}

func TestSubmitUploadRequiresCustomersAndProducts(t *testing.T) {
	client := &stubClient{}
	service, _, _ := newTestService(client)

	result, err := service.SubmitUpload(context.Background(), UploadRequest{Customers: csvFile("customers.csv")})
	assert.ErrorIs(t, err, ErrMissingRequiredFiles)
	assert.Equal(t, NotificationError, result.Notification.Level)
	assert.Equal(t, MsgMissingFiles, result.Notification.Message)
	assert.Equal(t, int32(0), client.uploadCalls.Load())
}

func TestSubmitUploadRejectsNonCSV(t *testing.T) {
	client := &stubClient{}
	service, _, _ := newTestService(client)

	result, err := service.SubmitUpload(context.Background(), UploadRequest{
		Customers: csvFile("customers.csv"),
		Products:  csvFile("products.xlsx"),
	})
	assert.ErrorIs(t, err, ErrInvalidFileType)
	assert.Equal(t, MsgInvalidFileType, result.Notification.Message)
	assert.Equal(t, int32(0), client.uploadCalls.Load())
}

func TestSubmitUploadDisablesFormWhileInFlight(t *testing.T) {
	client := &stubClient{}
	capture := &activity.CaptureHook{}
	service, _, _ := newTestService(client, func(o *Options) {
		o.ActivityHooks = activity.Hooks{capture}
		o.ActivityConfig = activity.Config{Enabled: true}
	})
	var during UploadFormState
	client.uploadHook = func() { during = service.UploadForm() }

	result, err := service.SubmitUpload(context.Background(), UploadRequest{
		Customers: csvFile("customers.csv"),
		Products:  csvFile("products.csv"),
		Events:    csvFile("events.csv"),
	})
	require.NoError(t, err)

	assert.True(t, during.Disabled)
	assert.Equal(t, "Uploading...", during.Label)
	assert.False(t, result.Form.Disabled)
	assert.Equal(t, "Upload Files", result.Form.Label)
	assert.Equal(t, NotificationSuccess, result.Notification.Level)
	assert.Equal(t, MsgUploadSuccess, result.Notification.Message)

	events := capture.Snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "dashboard.upload", events[0].Verb)
	assert.Equal(t, []string{"customers.csv", "products.csv", "events.csv"}, events[0].Metadata["files"])
}

func TestSubmitUploadFailureMessages(t *testing.T) {
	client := &stubClient{uploadErr: &PayloadError{Status: 400, Message: "customers.csv is missing column segment"}}
	service, _, _ := newTestService(client)
	req := UploadRequest{Customers: csvFile("customers.csv"), Products: csvFile("products.csv")}

	result, err := service.SubmitUpload(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "Error uploading files: customers.csv is missing column segment", result.Notification.Message)
	assert.Equal(t, "Upload Files", result.Form.Label)

	client.uploadErr = errNetwork
	result, err = service.SubmitUpload(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "Error uploading files: connection refused", result.Notification.Message)
	assert.False(t, service.UploadForm().Disabled)
}

func TestUploadFormRejectsConcurrentBegin(t *testing.T) {
	form := NewUploadForm()
	require.True(t, form.Begin())
	assert.False(t, form.Begin())
	form.End()
	assert.True(t, form.Begin())
}
