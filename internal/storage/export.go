package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/oscsim/internal/diagnostics"
)

type ExportData struct {
	RunMetadata
	Samples []diagnostics.Point `json:"samples"`
}

// ExportJSON writes the metadata and every sample of a stored run as one
// indented JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	points, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Samples: points})
}
