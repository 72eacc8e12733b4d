package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `geodash explores a table of geolocated projects with a linked map.

Each session has its own view: filter, sort, page and selected project. Every
view tool returns the whole view state, so there is no need to call get_view
after a change.

Workflow:
1) get_view to see the first page and the dataset size.
2) set_filter / clear_filters to narrow the table; the page returns to 0.
3) set_sort to order it; calling it again with the same field flips direction.
4) select_record to focus one project; the selection survives filter changes,
   and its table position and map focus are reported when it is in the view.
5) get_map for clusters of the filtered projects at a zoom level.

Transport notes:
- HTTP: pass the session id via the Mcp-Session-Id header.
- Stdio: pass it via _meta.session_id; otherwise one session is shared.

Docs: geodash://docs/usage
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "geodash://docs/usage",
		Name:        "docs_usage",
		Title:       "geodash usage",
		Description: "Filter, sort, paging and selection semantics of the project explorer tools.",
		Content: `# geodash usage

## Records

Every project has ` + "`id`" + `, ` + "`project_name`" + `, ` + "`category`" + `, ` + "`latitude`" + `, ` + "`longitude`" + `,
` + "`status`" + ` (Active, Pending, Completed, On Hold), ` + "`last_updated`" + ` and ` + "`region`" + `.
` + "`last_updated`" + ` may be missing.

## Filtering

` + "`set_filter`" + ` patches the filter:

- ` + "`search`" + `: case-insensitive substring of the project name.
- ` + "`statuses`" + `: keep only these statuses. ` + "`[]`" + ` keeps all.
- ` + "`date_from`" + ` / ` + "`date_to`" + `: inclusive days, ` + "`YYYY-MM-DD`" + `, in the server's time zone.
  A project with no ` + "`last_updated`" + ` fails any date bound. A range whose start is after its
  end is allowed and matches nothing.

Omitted fields keep their value; an empty string or list clears that field.
All constraints must hold. Any filter change returns to page 0.

## Sorting

` + "`set_sort`" + ` with a field sorts ascending; the same field again flips to descending and
back. Text compares case-insensitively, and numeric text compares as numbers.
Missing values come first in both directions. Ties keep load order. An empty
field restores load order.

## Paging

Page sizes are 10, 25, 50 and 100. Pages are zero-based. A page past the end is
empty rather than an error.

## Selection

` + "`select_record`" + ` accepts any id. The selection is kept across filter, sort and page
changes. When the project is in the view, ` + "`selection.target`" + ` gives its page and
row and ` + "`selection.focus`" + ` the map position; the table never changes page on its
own.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
