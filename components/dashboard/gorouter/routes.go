package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-retail-dashboard/components/dashboard"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/queries"
)

const maxUploadMemory = 32 << 20

// ActivityResolver extracts the actor of a request for activity events.
type ActivityResolver func(router.Context) dashboard.ActivityContext

// Config wires go-router with the dashboard controller, API and push stream.
type Config[T any] struct {
	Router           router.Router[T]
	Controller       *dashboard.Controller
	API              *httpapi.Handlers
	Broadcast        *dashboard.BroadcastHook
	ActivityResolver ActivityResolver
	BasePath         string
	Routes           RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	Pages           map[string]string
	Panel           string
	Refresh         string
	Track           string
	Upload          string
	Recommendations string
	WebSocket       string
}

// Register mounts dashboard routes (HTML pages, JSON API, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	resolver := cfg.ActivityResolver
	if resolver == nil {
		resolver = defaultActivityResolver
	}

	group := cfg.Router
	if base := strings.TrimRight(cfg.BasePath, "/"); base != "" {
		group = cfg.Router.Group(base)
	}
	for view, path := range routes.Pages {
		registerPage(group, cfg.Controller, cfg.API, view, path, resolver)
	}
	if cfg.API != nil {
		registerAPI(group, cfg.API, resolver, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerPage[T any](r router.Router[T], controller *dashboard.Controller, api *httpapi.Handlers, view, path string, resolver ActivityResolver) {
	r.Get(path, router.WrapHandler(func(ctx router.Context) error {
		reqCtx := dashboard.ContextWithActivity(ctx.Context(), resolver(ctx))
		params := map[string]string{}
		if view == dashboard.ViewRecommendations {
			customerID := strings.TrimSpace(ctx.Query("customer_id"))
			params["customer_id"] = customerID
			if customerID != "" && api != nil && api.Recommendations != nil {
				if _, err := api.Recommendations.Query(reqCtx, queries.RecommendationsInput{CustomerID: customerID}); err != nil {
					params["lookup_error"] = dashboard.UserMessage(err)
				}
			}
		}
		var buf bytes.Buffer
		if err := controller.RenderTemplate(reqCtx, view, &buf, params); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))
}

func registerAPI[T any](r router.Router[T], api *httpapi.Handlers, resolver ActivityResolver, routes RouteConfig) {
	if api.Panel != nil {
		r.Get(routes.Panel, router.WrapHandler(func(ctx router.Context) error {
			panel, err := api.Panel.Query(ctx.Context(), queries.PanelInput{Slot: ctx.Param("slot")})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, panel)
		}))
	}

	if api.Refresh != nil {
		r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
			var payload commands.RefreshPanelInput
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			if err := api.Refresh.Execute(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusAccepted, map[string]string{"status": "refreshed"})
		}))
	}

	if api.Track != nil {
		r.Post(routes.Track, router.WrapHandler(func(ctx router.Context) error {
			var payload dashboard.TrackEventInput
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			reqCtx := dashboard.ContextWithActivity(ctx.Context(), resolver(ctx))
			if err := api.Track.Execute(reqCtx, payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, dashboard.Notification{
				Level:   dashboard.NotificationSuccess,
				Message: dashboard.MsgEventTracked,
			})
		}))
	}

	if api.Recommendations != nil {
		r.Get(routes.Recommendations, router.WrapHandler(func(ctx router.Context) error {
			reqCtx := dashboard.ContextWithActivity(ctx.Context(), resolver(ctx))
			panel, err := api.Recommendations.Query(reqCtx, queries.RecommendationsInput{CustomerID: ctx.Param("customer_id")})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, panel)
		}))
	}

	if api.Upload != nil {
		r.Post(routes.Upload, router.WrapHandler(func(ctx router.Context) error {
			form, err := parseMultipart(ctx.Header("Content-Type"), ctx.Body())
			if err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			defer form.RemoveAll()
			req, closeFiles, err := httpapi.UploadRequestFromForm(form)
			if err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			defer closeFiles()

			reqCtx := dashboard.ContextWithActivity(ctx.Context(), resolver(ctx))
			var result dashboard.UploadResult
			status := http.StatusOK
			if err := api.Upload.Execute(reqCtx, commands.UploadDatasetInput{Request: req, Result: &result}); err != nil {
				status = httpapi.StatusFor(err)
			}
			return ctx.JSON(status, result)
		}))
	}
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe("")
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// parseMultipart decodes a buffered multipart/form-data body.
func parseMultipart(contentType string, body []byte) (*multipart.Form, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("gorouter: parse content type: %w", err)
	}
	if mediaType != "multipart/form-data" || params["boundary"] == "" {
		return nil, fmt.Errorf("gorouter: expected multipart/form-data, got %s", mediaType)
	}
	form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(maxUploadMemory)
	if err != nil {
		return nil, fmt.Errorf("gorouter: read multipart form: %w", err)
	}
	return form, nil
}

func defaultActivityResolver(ctx router.Context) dashboard.ActivityContext {
	var meta dashboard.ActivityContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		meta.UserID = v
		meta.ActorID = v
	}
	if v, ok := ctx.Locals("actor_id").(string); ok && v != "" {
		meta.ActorID = v
	}
	if v, ok := ctx.Locals("tenant_id").(string); ok {
		meta.TenantID = v
	}
	return meta
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if len(routes.Pages) == 0 {
		routes.Pages = map[string]string{}
		for _, item := range dashboard.DefaultNavigation() {
			routes.Pages[item.View] = item.Route
		}
	}
	if routes.Panel == "" {
		routes.Panel = "/api/panels/:slot"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/api/refresh"
	}
	if routes.Track == "" {
		routes.Track = "/api/track_event"
	}
	if routes.Upload == "" {
		routes.Upload = "/api/upload"
	}
	if routes.Recommendations == "" {
		routes.Recommendations = "/api/recommendations/:customer_id"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
