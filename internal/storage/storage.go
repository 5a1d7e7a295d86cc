// Package storage keeps uploaded note files.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/SAP-F-2025/edunexus-service/internal/config"
)

// FileStore saves and removes note files by key.
type FileStore interface {
	// Save stores data under key and returns the URL it is served from.
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver.
func New(cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(cfg)
	case "local", "":
		return NewLocalStore(cfg.LocalDir, cfg.PublicURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NoteKey places a file under its chapter with a unique prefix.
func NoteKey(chapterID, uniqueID, safeName string) string {
	return path.Join(chapterID, uniqueID+"_"+safeName)
}

func joinURL(base, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}
