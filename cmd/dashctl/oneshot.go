package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-retail-dashboard/components/dashboard"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-retail-dashboard/pkg/config"
)

type refreshCmd struct {
	View     string `help:"View code to refresh." xor:"target" required:""`
	Slot     string `help:"Single slot to refresh." xor:"target" required:""`
	Manifest string `type:"path" help:"View manifest YAML to apply first."`
}

func (cmd *refreshCmd) Run(g *Globals) error {
	rt, err := oneShotRuntime(g, cmd.Manifest)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	refresh := commands.NewRefreshPanelCommand(rt.service, rt.telemetry)
	if err := refresh.Execute(ctx, commands.RefreshPanelInput{View: cmd.View, Slot: cmd.Slot}); err != nil {
		return err
	}
	if cmd.Slot != "" {
		panel, err := queries.NewPanelQuery(rt.service).Query(ctx, queries.PanelInput{Slot: cmd.Slot})
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, panel)
	}
	panels, err := queries.NewViewPanelsQuery(rt.service).Query(ctx, queries.ViewPanelsInput{View: cmd.View})
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, panels)
}

type uploadCmd struct {
	Customers string `required:"" type:"existingfile" help:"customers.csv"`
	Products  string `required:"" type:"existingfile" help:"products.csv"`
	Events    string `type:"existingfile" help:"Optional events.csv"`
}

func (cmd *uploadCmd) Run(g *Globals) error {
	rt, err := oneShotRuntime(g, "")
	if err != nil {
		return err
	}
	defer rt.Close()

	req, closeFiles, err := openUpload(cmd.Customers, cmd.Products, cmd.Events)
	if err != nil {
		return err
	}
	defer closeFiles()

	var result dashboard.UploadResult
	upload := commands.NewUploadDatasetCommand(rt.service, rt.telemetry)
	err = upload.Execute(context.Background(), commands.UploadDatasetInput{Request: req, Result: &result})
	if printErr := printJSON(os.Stdout, result.Notification); printErr != nil {
		return printErr
	}
	return err
}

// openUpload opens each named file. The returned func closes them all.
func openUpload(customers, products, events string) (dashboard.UploadRequest, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	open := func(path string) (*dashboard.UploadFile, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("dashctl: open %s: %w", path, err)
		}
		files = append(files, f)
		return &dashboard.UploadFile{Filename: filepath.Base(path), Body: f}, nil
	}

	var req dashboard.UploadRequest
	var err error
	if req.Customers, err = open(customers); err != nil {
		closeAll()
		return dashboard.UploadRequest{}, func() {}, err
	}
	if req.Products, err = open(products); err != nil {
		closeAll()
		return dashboard.UploadRequest{}, func() {}, err
	}
	if req.Events, err = open(events); err != nil {
		closeAll()
		return dashboard.UploadRequest{}, func() {}, err
	}
	return req, closeAll, nil
}

type trackCmd struct {
	Customer string `required:"" help:"Customer id."`
	Product  string `required:"" help:"Product id."`
	Type     string `default:"view" help:"Event type."`
}

func (cmd *trackCmd) Run(g *Globals) error {
	rt, err := oneShotRuntime(g, "")
	if err != nil {
		return err
	}
	defer rt.Close()

	track := commands.NewTrackEventCommand(rt.service, rt.telemetry)
	if err := track.Execute(context.Background(), dashboard.TrackEventInput{
		CustomerID: cmd.Customer,
		ProductID:  cmd.Product,
		EventType:  cmd.Type,
	}); err != nil {
		return err
	}
	return printJSON(os.Stdout, dashboard.Notification{Level: dashboard.NotificationSuccess, Message: dashboard.MsgEventTracked})
}

type recommendCmd struct {
	Customer string `arg:"" help:"Customer id."`
}

func (cmd *recommendCmd) Run(g *Globals) error {
	rt, err := oneShotRuntime(g, "")
	if err != nil {
		return err
	}
	defer rt.Close()

	panel, err := queries.NewRecommendationsQuery(rt.service).Query(context.Background(), queries.RecommendationsInput{
		CustomerID: cmd.Customer,
	})
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, panel)
}

func oneShotRuntime(g *Globals, manifest string) (*runtime, error) {
	cfg, err := g.load(config.Overrides{ManifestPath: manifest})
	if err != nil {
		return nil, err
	}
	rt, err := newRuntime(cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := rt.loadManifest(); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}
