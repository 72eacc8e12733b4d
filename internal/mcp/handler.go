package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/geodash/internal/domain/query"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/presenter/spatial"
)

// ErrInvalidParams indicates request parameters that do not decode.
var ErrInvalidParams = errors.New("invalid params")

// defaultMapZoom is used by get_map when no zoom is given.
const defaultMapZoom = 3

// Caller identifies whose workspace a request acts on.
type Caller struct {
	Client  string
	Session string
}

// Handler implements the explorer tools on top of a workspace registry. The
// MCP server and the JSON-RPC transport both dispatch to it.
type Handler struct {
	workspaces *Workspaces
}

// NewHandler creates a new MCP handler.
func NewHandler(workspaces *Workspaces) *Handler {
	return &Handler{workspaces: workspaces}
}

// Handle dispatches a JSON-RPC method to the tool of the same name.
func (h *Handler) Handle(ctx context.Context, clientID, sessionID, method string, params json.RawMessage) (any, error) {
	c := Caller{Client: clientID, Session: sessionID}
	switch method {
	case "get_view":
		return call(ctx, c, params, h.GetView)
	case "set_filter":
		return call(ctx, c, params, h.SetFilter)
	case "clear_filters":
		return call(ctx, c, params, h.ClearFilters)
	case "set_sort":
		return call(ctx, c, params, h.SetSort)
	case "select_record":
		return call(ctx, c, params, h.SelectRecord)
	case "clear_selection":
		return call(ctx, c, params, h.ClearSelection)
	case "set_page":
		return call(ctx, c, params, h.SetPage)
	case "set_page_size":
		return call(ctx, c, params, h.SetPageSize)
	case "list_statuses":
		return call(ctx, c, params, h.ListStatuses)
	case "get_map":
		return call(ctx, c, params, h.GetMap)
	default:
		return nil, mapError(fmt.Errorf("%w: %s", ErrUnknownMethod, method))
	}
}

func call[In, Out any](ctx context.Context, c Caller, params json.RawMessage, fn func(context.Context, Caller, In) (Out, error)) (any, error) {
	var in In
	if err := decodeParams(params, &in); err != nil {
		return nil, &APIError{Code: "INVALID_PARAMS", Message: fmt.Errorf("%w: %w", ErrInvalidParams, err).Error()}
	}
	out, err := fn(ctx, c, in)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return json.Unmarshal(params, out)
}

// GetView returns the caller's view without changing it.
func (h *Handler) GetView(ctx context.Context, c Caller, _ GetViewParams) (ViewResponse, error) {
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return ViewResponse{}, err
	}
	return toViewResponse(ws), nil
}

// SetFilter patches the filter and returns to the first page.
func (h *Handler) SetFilter(ctx context.Context, c Caller, req SetFilterParams) (ViewResponse, error) {
	patch, err := toFilterPatch(req)
	if err != nil {
		return ViewResponse{}, mapError(err)
	}
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return ViewResponse{}, err
	}
	if err := ws.Explorer.SetFilter(patch); err != nil {
		return ViewResponse{}, mapError(err)
	}
	return toViewResponse(ws), nil
}

// ClearFilters drops every filter, keeping sort and selection.
func (h *Handler) ClearFilters(ctx context.Context, c Caller, _ ClearFiltersParams) (ViewResponse, error) {
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return ViewResponse{}, err
	}
	ws.Explorer.ClearFilters()
	return toViewResponse(ws), nil
}

// SetSort picks a sort field, flipping direction when it is already active.
func (h *Handler) SetSort(ctx context.Context, c Caller, req SetSortParams) (ViewResponse, error) {
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return ViewResponse{}, err
	}
	if err := ws.Explorer.SetSort(record.Field(req.Field)); err != nil {
		return ViewResponse{}, mapError(err)
	}
	return toViewResponse(ws), nil
}

// SelectRecord selects a record by id.
func (h *Handler) SelectRecord(ctx context.Context, c Caller, req SelectRecordParams) (ViewResponse, error) {
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return ViewResponse{}, err
	}
	ws.Explorer.Select(req.ID)
	return toViewResponse(ws), nil
}

// ClearSelection unsets the selection.
func (h *Handler) ClearSelection(ctx context.Context, c Caller, _ ClearSelectionParams) (ViewResponse, error) {
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return ViewResponse{}, err
	}
	ws.Explorer.ClearSelection()
	return toViewResponse(ws), nil
}

// SetPage moves to a page. Pages past the end are allowed and empty.
func (h *Handler) SetPage(ctx context.Context, c Caller, req SetPageParams) (ViewResponse, error) {
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return ViewResponse{}, err
	}
	if err := ws.Explorer.SetPage(req.Page); err != nil {
		return ViewResponse{}, mapError(err)
	}
	return toViewResponse(ws), nil
}

// SetPageSize changes the page size and returns to the first page.
func (h *Handler) SetPageSize(ctx context.Context, c Caller, req SetPageSizeParams) (ViewResponse, error) {
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return ViewResponse{}, err
	}
	if err := ws.Explorer.SetPageSize(req.Size); err != nil {
		return ViewResponse{}, mapError(err)
	}
	return toViewResponse(ws), nil
}

// ListStatuses returns the status filter choices.
func (h *Handler) ListStatuses(ctx context.Context, c Caller, _ ListStatusesParams) (StatusesResponse, error) {
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return StatusesResponse{}, err
	}
	return StatusesResponse{Statuses: statusStrings(ws.Explorer.Statuses())}, nil
}

// GetMap returns the view as clusters at a zoom level, plus the selection
// focus and optionally one marker per record.
func (h *Handler) GetMap(ctx context.Context, c Caller, req GetMapParams) (MapResponse, error) {
	ws, err := h.workspace(ctx, c)
	if err != nil {
		return MapResponse{}, err
	}

	zoom := defaultMapZoom
	if req.Zoom != nil {
		zoom = min(max(*req.Zoom, 0), spatial.MaxZoom)
	}
	resp := MapResponse{
		Zoom:     zoom,
		Total:    ws.Explorer.TotalMatchCount(),
		Clusters: ws.Map.Clusters(zoom),
	}
	if resp.Clusters == nil {
		resp.Clusters = []spatial.Cluster{}
	}
	if req.IncludeMarkers {
		resp.Markers = ws.Map.Markers()
	}
	if focus, ok := ws.Map.Focus(); ok {
		resp.Focus = &focus
	}
	return resp, nil
}

func (h *Handler) workspace(ctx context.Context, c Caller) (*Workspace, error) {
	ws, err := h.workspaces.Get(ctx, c.Client, c.Session)
	if err != nil {
		return nil, mapError(err)
	}
	return ws, nil
}

func toFilterPatch(req SetFilterParams) (query.FilterPatch, error) {
	patch := query.FilterPatch{Search: req.Search}
	if req.Statuses != nil {
		statuses := make([]record.Status, 0, len(*req.Statuses))
		for _, value := range *req.Statuses {
			s, err := record.ParseStatus(value)
			if err != nil {
				return query.FilterPatch{}, fmt.Errorf("%w: %q", err, value)
			}
			statuses = append(statuses, s)
		}
		patch.Statuses = &statuses
	}
	if req.DateFrom != nil {
		d, err := query.ParseDate(*req.DateFrom)
		if err != nil {
			return query.FilterPatch{}, err
		}
		patch.DateFrom = &d
	}
	if req.DateTo != nil {
		d, err := query.ParseDate(*req.DateTo)
		if err != nil {
			return query.FilterPatch{}, err
		}
		patch.DateTo = &d
	}
	return patch, nil
}
