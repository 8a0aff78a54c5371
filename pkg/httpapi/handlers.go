package httpapi

import (
	"errors"
	"math"

	"github.com/goccy/go-json"
	"github.com/paulmach/go.geojson"
	"github.com/valyala/fasthttp"

	"github.com/azybler/map_router/pkg/routeerr"
	"github.com/azybler/map_router/pkg/snap"
)

const maxRequestBodyBytes = 1024

// routePlanner is the interface Handlers depends on, satisfied by
// *Planner; kept narrow so tests can supply a fake instead of a real
// compiled graph.
type routePlanner interface {
	Route(start, end LatLng) (*geojson.FeatureCollection, float64, error)
	Stats() StatsResponse
}

// Handlers holds the set of per-profile planners and answers the three
// routes described in SPEC_FULL.md §4.12.
type Handlers struct {
	planners map[string]routePlanner
	stats    StatsResponse
}

// NewHandlers builds Handlers from one Planner per profile name it should
// serve. HandleStats reports the stats of one of the planners, whichever
// map iteration yields first (every profile in a deployment is typically built over the same underlying OSM
// extract, just with different edge weights, so node counts rarely differ
// enough to matter).
func NewHandlers(planners map[string]*Planner) *Handlers {
	wrapped := make(map[string]routePlanner, len(planners))
	for name, p := range planners {
		wrapped[name] = p
	}
	return newHandlers(wrapped)
}

func newHandlers(planners map[string]routePlanner) *Handlers {
	h := &Handlers{planners: planners}
	for _, p := range planners {
		h.stats = p.Stats()
		break
	}
	return h
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(ctx *fasthttp.RequestCtx) {
	if ct := string(ctx.Request.Header.ContentType()); ct != "application/json" {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid_request", "")
		return
	}

	body := ctx.Request.Body()
	if len(body) > maxRequestBodyBytes {
		writeError(ctx, fasthttp.StatusBadRequest, "request_too_large", "")
		return
	}

	var req RouteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid_request", "")
		return
	}
	if err := validateCoord(req.Start); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	planner, ok := h.planners[req.Profile]
	if !ok {
		writeError(ctx, fasthttp.StatusBadRequest, "unknown_profile", "profile")
		return
	}

	route, cost, err := planner.Route(req.Start, req.End)
	if err != nil {
		switch {
		case errors.Is(err, snap.ErrTooFar):
			writeError(ctx, fasthttp.StatusUnprocessableEntity, "point_too_far_from_road", "")
		case errors.Is(err, ErrNoRoute):
			writeError(ctx, fasthttp.StatusNotFound, "no_route_found", "")
		default:
			var limitErr *routeerr.StepLimitExceeded
			if errors.As(err, &limitErr) {
				writeError(ctx, fasthttp.StatusUnprocessableEntity, "step_limit_exceeded", "")
				return
			}
			writeError(ctx, fasthttp.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSON(ctx, RouteResponse{TotalCost: cost, Route: route})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, h.stats)
}

func validateCoord(ll LatLng) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeJSON(ctx *fasthttp.RequestCtx, v interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	data, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetBody(data)
}

func writeError(ctx *fasthttp.RequestCtx, status int, code, field string) {
	ctx.SetStatusCode(status)
	writeJSON(ctx, ErrorResponse{Error: code, Field: field})
}
