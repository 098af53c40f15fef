// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cartwise/internal/metrics"
	"github.com/tomtom215/cartwise/internal/recommend"
)

// Ensure FileSource implements recommend.CatalogSource
var _ recommend.CatalogSource = (*FileSource)(nil)

// FileSource reads the catalog from a JSON file on every fetch.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed catalog source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

// Products reads and decodes the catalog file.
func (s *FileSource) Products(ctx context.Context) ([]recommend.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	products, err := s.read()
	metrics.RecordCatalogFetch("file", len(products), time.Since(start), err)
	return products, err
}

func (s *FileSource) read() ([]recommend.Product, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	products, err := decodeProducts(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", s.path, err)
	}
	return products, nil
}

// LoadUsers reads a JSON array of users from path.
func LoadUsers(path string) ([]recommend.User, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var users []recommend.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users file %s: %w", path, err)
	}
	return users, nil
}
