package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools exposes every Handler operation as an MCP tool.
func registerTools(server *sdkmcp.Server, h *Handler) {
	addTool(server, "get_view",
		"Get the current page of the project table with the active filter, sort, page and selection",
		h.GetView)
	addTool(server, "set_filter",
		"Filter projects by name search, statuses and an inclusive last-updated date range. Omitted fields are kept; empty values clear. Returns to page 0",
		h.SetFilter)
	addTool(server, "clear_filters",
		"Remove every filter. Sort and selection are kept",
		h.ClearFilters)
	addTool(server, "set_sort",
		"Sort by a field (id, project_name, category, latitude, longitude, status, last_updated, region). Picking the active field flips asc/desc; an empty field restores load order",
		h.SetSort)
	addTool(server, "select_record",
		"Select a project by id. Returns where the table and map show it",
		h.SelectRecord)
	addTool(server, "clear_selection",
		"Clear the selected project",
		h.ClearSelection)
	addTool(server, "set_page",
		"Move to a zero-based page of the table",
		h.SetPage)
	addTool(server, "set_page_size",
		"Set rows per page (10, 25, 50 or 100) and return to page 0",
		h.SetPageSize)
	addTool(server, "list_statuses",
		"List the project statuses that can be filtered on",
		h.ListStatuses)
	addTool(server, "get_map",
		"Get the filtered projects as map clusters at a zoom level, with the selected project's focus",
		h.GetMap)
}

func addTool[In, Out any](server *sdkmcp.Server, name, description string, fn func(context.Context, Caller, In) (Out, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, req *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
			out, err := fn(ctx, callerFrom(ctx, req), in)
			if err != nil {
				var zero Out
				return nil, zero, err
			}
			return nil, out, nil
		})
}

// callerFrom reads the caller injected by middleware, falling back to the
// transport session id.
func callerFrom(ctx context.Context, req *sdkmcp.CallToolRequest) Caller {
	c := Caller{Client: getClientID(ctx), Session: getSessionID(ctx)}
	if c.Session == "" && req != nil && req.Session != nil {
		c.Session = req.Session.ID()
	}
	return c
}
