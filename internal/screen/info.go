package screen

import "time"

// Collection methods recorded on a screen-info record.
const (
	CollectionAutomatic = "automatic"
	CollectionManual    = "manual"
)

// Info is the per-candidate screen record persisted alongside a calibration.
// Downstream analyzers read it back to interpret stored transforms, so the
// JSON field names are part of the transport contract.
type Info struct {
	CandidateID      string    `json:"candidate_id"`
	Timestamp        time.Time `json:"timestamp"`
	CollectionMethod string    `json:"collection_method"`
	Geometry
	CameraPosition string  `json:"camera_position"`
	DistanceCm     float64 `json:"distance_cm"`
	DPI            float64 `json:"dpi"`
	DiagonalInches float64 `json:"diagonal_inches"`
	MonitorName    string  `json:"monitor_name,omitempty"`
}

// NewInfo builds a screen-info record for a candidate, filling in the
// derived DPI and diagonal fields from the supplied geometry.
func NewInfo(candidateID string, geom Geometry, cameraPosition string, distanceCm float64) Info {
	return Info{
		CandidateID:      candidateID,
		Timestamp:        time.Now().UTC(),
		CollectionMethod: CollectionManual,
		Geometry:         geom,
		CameraPosition:   cameraPosition,
		DistanceCm:       distanceCm,
		DPI:              geom.DPI(),
		DiagonalInches:   geom.DiagonalInches(),
	}
}
