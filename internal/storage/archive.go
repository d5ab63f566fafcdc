package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/cpkit/internal/models"
)

const archiveVersion = 1

type archive struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Problems   []*models.Problem `json:"problems"`
}

// Export writes problems to w as zstd compressed JSON.
func Export(w io.Writer, problems []*models.Problem) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	a := archive{Version: archiveVersion, ExportedAt: time.Now().UTC(), Problems: problems}
	if a.Problems == nil {
		a.Problems = []*models.Problem{}
	}
	if err := json.NewEncoder(enc).Encode(a); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush archive: %w", err)
	}
	return nil
}

// Import reads an archive written by Export.
func Import(r io.Reader) ([]*models.Problem, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	var a archive
	if err := json.NewDecoder(dec).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	if a.Version != archiveVersion {
		return nil, fmt.Errorf("unsupported archive version %d", a.Version)
	}
	return a.Problems, nil
}
