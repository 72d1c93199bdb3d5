package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Renderer is the template renderer contract (go-template satisfies it).
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// PanelSource resolves what a page shows.
type PanelSource interface {
	Panels(view string) ([]Panel, error)
	UploadForm() UploadFormState
}

// NavItem is one entry of the page navigation.
type NavItem struct {
	Label string `json:"label"`
	View  string `json:"view"`
	Route string `json:"route"`
	Icon  string `json:"icon,omitempty"`
}

// ControllerOptions configures Controller.
type ControllerOptions struct {
	Service    PanelSource
	Registry   *Registry
	Renderer   Renderer
	Template   string
	BasePath   string
	Navigation []NavItem
}

// Controller renders dashboard pages through the template renderer.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the panel source and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if len(opts.Navigation) == 0 {
		opts.Navigation = DefaultNavigation()
	}
	opts.BasePath = strings.TrimRight(opts.BasePath, "/")
	return &Controller{opts: opts}
}

// DefaultNavigation lists the built-in pages in menu order.
func DefaultNavigation() []NavItem {
	return []NavItem{
		{Label: "Home", View: ViewHome, Route: "/", Icon: "home"},
		{Label: "Upload Data", View: ViewUpload, Route: "/upload", Icon: "upload"},
		{Label: "Recommendations", View: ViewRecommendations, Route: "/recommendations", Icon: "star"},
		{Label: "Segments", View: ViewSegments, Route: "/segments", Icon: "pie-chart"},
		{Label: "Reports", View: ViewReports, Route: "/reports", Icon: "bar-chart"},
	}
}

// Page builds the template payload for a view.
func (c *Controller) Page(ctx context.Context, view string, params map[string]string) (map[string]any, error) {
	if c.opts.Service == nil {
		return nil, errors.New("dashboard: controller has no panel source")
	}
	def, ok := c.opts.Registry.View(view)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}
	panels, err := c.opts.Service.Panels(def.Code)
	if err != nil {
		return nil, err
	}
	form := c.opts.Service.UploadForm()
	payload := map[string]any{
		"title":       def.Name,
		"view":        def.Code,
		"description": def.Description,
		"base_path":   c.opts.BasePath,
		"nav":         c.navPayload(def.Code),
		"panels":      panelsPayload(panels),
		"upload": map[string]any{
			"disabled": form.Disabled,
			"label":    form.Label,
		},
	}
	for k, v := range params {
		if _, taken := payload[k]; !taken {
			payload[k] = v
		}
	}
	return payload, nil
}

// RenderTemplate renders a view page into out.
func (c *Controller) RenderTemplate(ctx context.Context, view string, out io.Writer, params ...map[string]string) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: controller has no renderer")
	}
	var extra map[string]string
	if len(params) > 0 {
		extra = params[0]
	}
	payload, err := c.Page(ctx, view, extra)
	if err != nil {
		return err
	}
	if _, err := c.opts.Renderer.Render(c.opts.Template, payload, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", c.opts.Template, err)
	}
	return nil
}

func (c *Controller) navPayload(active string) []map[string]any {
	out := make([]map[string]any, 0, len(c.opts.Navigation))
	for _, item := range c.opts.Navigation {
		out = append(out, map[string]any{
			"label":  item.Label,
			"href":   c.opts.BasePath + item.Route,
			"icon":   item.Icon,
			"active": item.View == active,
		})
	}
	return out
}

func panelsPayload(panels []Panel) []map[string]any {
	out := make([]map[string]any, 0, len(panels))
	for _, p := range panels {
		fields := make([]map[string]any, 0, len(p.Fields))
		for _, f := range p.Fields {
			fields = append(fields, map[string]any{"label": f.Label, "value": f.Value})
		}
		out = append(out, map[string]any{
			"slot":         p.Slot,
			"container_id": p.ContainerID,
			"title":        p.Title,
			"state":        string(p.State),
			"message":      p.Message,
			"fields":       fields,
			"rows":         p.Rows,
			"chart_id":     p.ChartID,
			"chart_html":   p.ChartHTML,
			"stale":        p.Stale,
			"updated_at":   p.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out
}
