// Package server exposes the resolution pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"openhours/internal/app"
	"openhours/internal/lookup"
)

// Config for the HTTP API handler.
type Config struct {
	App      *app.App
	BasePath string
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"bad_request"`
	Message string         `json:"message" example:"invalid timestamp"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the openhours API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}

	router := chi.NewRouter()
	hcfg := huma.DefaultConfig("openhours API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerResolutions(group, cfg.App)
	registerLookups(group, cfg.App)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "unprocessable"
	default:
		return "internal_error"
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

// timestampLayouts accepted by the resolutions endpoint.
var timestampLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func registerResolutions(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "create-resolution",
		Method:      http.MethodPost,
		Path:        "/resolutions",
		Summary:     "Resolve an instant against the loaded rules",
		Description: "Resolves the given timestamp, or a random instant from the configured year when none is supplied, and appends one audit record.",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body ResolutionRequest
	}) (*struct {
		Body ResolutionResponse `json:"body"`
	}, error) {
		at := a.Random.Next()
		if input.Body.Timestamp != "" {
			parsed, err := parseTimestamp(input.Body.Timestamp)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid timestamp",
					map[string]any{"timestamp": input.Body.Timestamp})
			}
			at = parsed
		}
		res, err := a.Resolver.Resolve(ctx, at)
		if err != nil {
			return nil, newAPIError(http.StatusInternalServerError, "audit_append_failed", err.Error(), nil)
		}
		return &struct {
			Body ResolutionResponse `json:"body"`
		}{Body: ResolutionResponse{
			ID:         uuid.New().String(),
			Resolution: res,
			NoResult:   res.Verdict.NoResult(),
		}}, nil
	})
}

func registerLookups(api huma.API, a *app.App) {
	paths := map[string]string{
		"business-hours":  a.Config.Lookups.BusinessHours,
		"public-holidays": a.Config.Lookups.PublicHolidays,
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-lookup",
		Method:      http.MethodGet,
		Path:        "/lookups/{name}",
		Summary:     "Reference lookup table",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" enum:"business-hours,public-holidays"`
	}) (*struct {
		Body lookup.Table `json:"body"`
	}, error) {
		path, ok := paths[input.Name]
		if !ok {
			return nil, newAPIError(http.StatusNotFound, "not_found", "unknown lookup table",
				map[string]any{"name": input.Name})
		}
		t, err := lookup.Load(path)
		if err != nil {
			return nil, newAPIError(http.StatusInternalServerError, "", err.Error(), nil)
		}
		return &struct {
			Body lookup.Table `json:"body"`
		}{Body: t}, nil
	})
}
