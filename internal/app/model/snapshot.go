package model

import "time"

// SnapshotVersion tags exported snapshots; importers accept this version.
const SnapshotVersion = "1.0"

// Snapshot is the export/import container. Sections may be nil in imported
// data; a missing section is a no-op for that section.
type Snapshot struct {
	Destinations []Destination `json:"destinations"`
	Shipments    []Shipment    `json:"shipments"`
	Settings     *Settings     `json:"settings,omitempty"`
	ExportDate   time.Time     `json:"exportDate"`
	Version      string        `json:"version"`
}
