package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/relabs-tech/vibecloud/core/logger"
)

// LocalFilesystem stores archived payloads below a base folder
type LocalFilesystem struct {
	baseFolder string
}

// NewLocalFilesystem returns a new LocalFilesystem
func NewLocalFilesystem(config LocalConfiguration) (*LocalFilesystem, error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("BasePath must not be empty")
	}
	if err := os.MkdirAll(config.BasePath, 0700); err != nil {
		return nil, fmt.Errorf("cannot create `%s`: %w", config.BasePath, err)
	}
	logger.Default().Debugln("archive filesystem enabled in", config.BasePath)
	return &LocalFilesystem{baseFolder: config.BasePath}, nil
}

// Store writes data to the file key below the base folder
func (f LocalFilesystem) Store(ctx context.Context, key string, data []byte) error {
	if key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("invalid key '%s'", key)
	}
	filePath := filepath.Join(f.baseFolder, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return fmt.Errorf("cannot create folder for key '%s': %w", key, err)
	}
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("cannot write key '%s': %w", key, err)
	}
	logger.FromContext(ctx).Debugf("Filesystem: stored key '%s'", key)
	return nil
}
