package mcp

import (
	"time"

	"github.com/rpggio/geodash/internal/domain/query"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/presenter/spatial"
	"github.com/rpggio/geodash/internal/presenter/table"
)

type GetViewParams struct{}

// SetFilterParams patches the filter. An omitted field is left as is; an
// empty string or empty list clears it.
type SetFilterParams struct {
	Search   *string   `json:"search,omitempty" jsonschema:"case-insensitive substring of the project name"`
	Statuses *[]string `json:"statuses,omitempty" jsonschema:"statuses to keep (Active, Pending, Completed, On Hold)"`
	DateFrom *string   `json:"date_from,omitempty" jsonschema:"first day to keep, YYYY-MM-DD"`
	DateTo   *string   `json:"date_to,omitempty" jsonschema:"last day to keep, YYYY-MM-DD"`
}

type ClearFiltersParams struct{}

type SetSortParams struct {
	Field string `json:"field" jsonschema:"field to sort by; repeat to flip direction, empty for insertion order"`
}

type SelectRecordParams struct {
	ID int64 `json:"id" jsonschema:"record id"`
}

type ClearSelectionParams struct{}

type SetPageParams struct {
	Page int `json:"page" jsonschema:"zero-based page index"`
}

type SetPageSizeParams struct {
	Size int `json:"size" jsonschema:"rows per page: 10, 25, 50 or 100"`
}

type ListStatusesParams struct{}

type GetMapParams struct {
	Zoom           *int `json:"zoom,omitempty" jsonschema:"map zoom level 0-18 used for clustering"`
	IncludeMarkers bool `json:"include_markers,omitempty" jsonschema:"return one marker per record in the view"`
}

// RecordResponse is a record as returned to clients.
type RecordResponse struct {
	ID          int64   `json:"id"`
	ProjectName string  `json:"project_name"`
	Category    string  `json:"category"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Status      string  `json:"status"`
	LastUpdated string  `json:"last_updated,omitempty"`
	Region      string  `json:"region"`
}

type FilterResponse struct {
	Search   string   `json:"search"`
	Statuses []string `json:"statuses"`
	DateFrom string   `json:"date_from,omitempty"`
	DateTo   string   `json:"date_to,omitempty"`
}

type SortResponse struct {
	Field     string `json:"field,omitempty"`
	Direction string `json:"direction"`
}

// SelectionResponse describes the selected record and where each view shows
// it. Record is unset when the id is not in the dataset; Focus is unset
// when the record is filtered out of the view.
type SelectionResponse struct {
	ID     int64           `json:"id"`
	Record *RecordResponse `json:"record,omitempty"`
	Target table.RowTarget `json:"target"`
	Focus  *spatial.Focus  `json:"focus,omitempty"`
}

// ViewResponse is the state every view tool returns.
type ViewResponse struct {
	Loaded      bool               `json:"loaded"`
	DatasetSize int                `json:"dataset_size"`
	Total       int                `json:"total"`
	Filter      FilterResponse     `json:"filter"`
	Sort        SortResponse       `json:"sort"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	PageCount   int                `json:"page_count"`
	Rows        []table.Row        `json:"rows"`
	Selection   *SelectionResponse `json:"selection,omitempty"`
}

type StatusesResponse struct {
	Statuses []string `json:"statuses"`
}

type MapResponse struct {
	Zoom     int               `json:"zoom"`
	Total    int               `json:"total"`
	Clusters []spatial.Cluster `json:"clusters"`
	Markers  []spatial.Marker  `json:"markers,omitempty"`
	Focus    *spatial.Focus    `json:"focus,omitempty"`
}

func toRecordResponse(r record.Record) *RecordResponse {
	resp := &RecordResponse{
		ID:          r.ID,
		ProjectName: r.ProjectName,
		Category:    r.Category,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Status:      string(r.Status),
		Region:      r.Region,
	}
	if r.LastUpdated != nil {
		resp.LastUpdated = r.LastUpdated.UTC().Format(time.RFC3339Nano)
	}
	return resp
}

func toViewResponse(ws *Workspace) ViewResponse {
	snap := ws.Explorer.Snapshot()

	resp := ViewResponse{
		Loaded:      snap.Loaded,
		DatasetSize: snap.DatasetSize,
		Total:       snap.Total,
		Filter: FilterResponse{
			Search:   snap.Filter.Search,
			Statuses: statusStrings(snap.Filter.Statuses),
		},
		Sort: SortResponse{
			Field:     string(snap.Sort.Field),
			Direction: string(snap.Sort.Direction),
		},
		Page:      snap.PageState.Index,
		PageSize:  snap.PageState.Size,
		PageCount: snap.PageCount,
		Rows:      ws.Table.Rows(),
	}
	if !snap.Filter.DateFrom.IsZero() {
		resp.Filter.DateFrom = snap.Filter.DateFrom.String()
	}
	if !snap.Filter.DateTo.IsZero() {
		resp.Filter.DateTo = snap.Filter.DateTo.String()
	}
	if resp.Sort.Direction == "" {
		resp.Sort.Direction = string(query.Asc)
	}

	if snap.Selected != nil {
		sel := &SelectionResponse{ID: *snap.Selected}
		if snap.SelectedRecord != nil {
			sel.Record = toRecordResponse(*snap.SelectedRecord)
		}
		if target, ok := ws.Table.Target(); ok {
			sel.Target = target
		}
		if focus, ok := ws.Map.Focus(); ok {
			sel.Focus = &focus
		}
		resp.Selection = sel
	}
	return resp
}

func statusStrings(statuses []record.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
