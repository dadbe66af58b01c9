package translator

import (
	"context"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// Get returns the process-wide shader translator, creating it on first use.
// Spinning up the ANGLE wasm runtime is expensive, so the instance is shared
// by every pipeline build.
func Get() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}
