package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// CatalogSource reads the commerce catalog snapshot on every call, so edits
// to the file show up without a restart. Absent or corrupt snapshots yield an
// empty catalog; product matching is an enrichment, never a failure mode.
type CatalogSource struct {
	path   string
	logger *slog.Logger
}

var _ ports.CatalogSource = (*CatalogSource)(nil)

// NewCatalogSource wires the snapshot path.
func NewCatalogSource(path string, logger *slog.Logger) *CatalogSource {
	return &CatalogSource{path: path, logger: logger}
}

// Load returns the catalog, or an empty slice when the snapshot is unusable.
func (s *CatalogSource) Load(_ context.Context) ([]domain.CatalogEntry, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) && s.logger != nil {
			s.logger.Warn("catalog snapshot unreadable", "path", s.path, "error", err)
		}
		return nil, nil
	}
	var catalog []domain.CatalogEntry
	if err := json.Unmarshal(raw, &catalog); err != nil {
		if s.logger != nil {
			s.logger.Warn("catalog snapshot unparsable", "path", s.path, "error", err)
		}
		return nil, nil
	}
	return catalog, nil
}
