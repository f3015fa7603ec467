package apophis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// acceptedExtensions is the set of Apophis source extensions.
var acceptedExtensions = map[string]bool{
	".apop": true,
	".apo":  true,
}

// LoadFile reads an Apophis document from disk. The extension must be
// .apop or .apo; anything else fails with InvalidExtensionError before the
// filesystem is touched. A missing file surfaces the underlying not-found
// error wrapped with the path.
func LoadFile(path string) (string, error) {
	if !acceptedExtensions[filepath.Ext(path)] {
		return "", &InvalidExtensionError{Path: path}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	return string(data), nil
}

// RunFile loads and executes a document with a fresh environment,
// returning its total output. This is the convenience entry point for
// one-shot command-line execution.
func (ip *Interpreter) RunFile(ctx context.Context, path string) (string, error) {
	source, err := LoadFile(path)
	if err != nil {
		return "", err
	}
	return ip.RunOnce(ctx, source)
}
