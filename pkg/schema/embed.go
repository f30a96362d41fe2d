package schema

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed defs/*.yaml
var defs embed.FS

// Definitions returns the embedded cluster definition files.
func Definitions() fs.FS {
	sub, err := fs.Sub(defs, "defs")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewDefaultBuilder returns a builder preloaded with the embedded
// definitions, ready for overlays.
func NewDefaultBuilder(config BuilderConfig) (*Builder, error) {
	b := NewBuilder(config)
	if err := b.AddFS(Definitions(), "*.yaml"); err != nil {
		return nil, err
	}
	return b, nil
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	b, err := NewDefaultBuilder(BuilderConfig{})
	if err != nil {
		return nil, err
	}
	return b.Build()
})

// Default returns the registry of the embedded definitions. It is built once
// and shared.
func Default() (*Registry, error) {
	return defaultRegistry()
}
