package query_test

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
)

func at(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &t
}

func fixture() []record.Record {
	return []record.Record{
		{ID: 1, ProjectName: "Solar Park - Phase 1", Category: "Environment", Status: record.StatusActive, LastUpdated: at("2025-01-10T08:00:00Z"), Region: "Europe", Latitude: 40.5, Longitude: 10.25},
		{ID: 2, ProjectName: "Ocean Cleanup - Phase 1", Category: "Environment", Status: record.StatusPending, Region: "Asia", Latitude: 20, Longitude: 100},
		{ID: 3, ProjectName: "ai ethics center - Phase 2", Category: "Technology", Status: record.StatusActive, LastUpdated: at("2025-02-01T00:00:00Z"), Region: "North America", Latitude: 30, Longitude: -100},
		{ID: 4, ProjectName: "Bypass Bridge - Phase 2", Category: "Infrastructure", Status: record.StatusCompleted, LastUpdated: at("2025-01-31T23:59:59Z"), Region: "Australia", Latitude: -30, Longitude: 120},
		{ID: 5, ProjectName: "Digital Library - Phase 3", Category: "Education", Status: record.StatusOnHold, Region: "Europe", Latitude: 50, Longitude: 5},
	}
}

func render(view []record.Record) []byte {
	var buf bytes.Buffer
	for _, r := range view {
		ts := "-"
		if r.LastUpdated != nil {
			ts = r.LastUpdated.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(&buf, "%d\t%s\t%s\t%s\n", r.ID, r.ProjectName, r.Status, ts)
	}
	return buf.Bytes()
}

func strPtr(s string) *string { return &s }
