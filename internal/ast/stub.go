//go:build !cgo

// Package ast turns source files into flat structural extracts. Without cgo
// the tree-sitter grammars are unavailable, so every file is recorded as an
// opaque failed parse; the rest of the pipeline still runs on file structure.
package ast

import (
	"context"
	"path/filepath"

	"codemap/internal/lang"
	"codemap/internal/logging"
	"codemap/internal/model"
)

type Builder struct {
	logger *logging.Logger
	warned bool
}

func NewBuilder(logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Builder{logger: logger}
}

func (b *Builder) ParseFile(_ context.Context, path string, source []byte) model.FileResult {
	if !b.warned {
		b.warned = true
		b.logger.Warn("built without cgo: tree-sitter parsing disabled, files indexed as opaque leaves", nil)
	}
	return model.FileResult{
		Path:     path,
		Language: lang.ForExtension(filepath.Ext(path)),
		Source:   string(source),
		Status:   model.ParseFailed,
	}
}
