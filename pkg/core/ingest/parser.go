// Package ingest adapts raw input files to the canonical GL record schema.
// Every adapter emits []models.GLRecord; the engines never see file formats.
package ingest

import (
	"io"

	"financial_normalizer/pkg/models"
)

// Parser is the ingestion boundary: anything that can turn a raw input
// stream into canonical GL records.
type Parser interface {
	Parse(r io.Reader) ([]models.GLRecord, error)
}
