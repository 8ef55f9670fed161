// Package mirror writes a best-effort JSON copy of each stored record to disk.
//
// Files are named processed-data-<key>.json under the data directory. Keys that
// are not already portable file names are sanitized and tagged with a hash of
// the key, so an event URL maps to its own flat file.
// Writes go through a temp file and a rename; readers never see a partial file.
package mirror

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/sha256-simd"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
	"github.com/okian/eventmatch/pkg/metrics"
)

const (
	filePrefix = "processed-data-"
	fileSuffix = ".json"

	dirPerm  = 0o755
	filePerm = 0o644

	// maxNameLen keeps generated names below common file system limits.
	maxNameLen = 200
	hashLen    = 16
)

// FileWriter persists records to a directory.
type FileWriter struct {
	dir    string
	logger logger.Logger
}

// New creates a writer rooted at dir. The directory is created lazily.
func New(dir string, opts ...Option) *FileWriter {
	w := &FileWriter{
		dir:    dir,
		logger: logger.Get().Named("mirror"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the target directory.
func (w *FileWriter) Dir() string { return w.dir }

// Path returns the file a record with the given key is written to.
func (w *FileWriter) Path(key string) string {
	return filepath.Join(w.dir, FileName(key))
}

// Write stores rec and returns the final path.
func (w *FileWriter) Write(ctx context.Context, rec model.Record) (string, error) { //nolint:gocritic // hugeParam: records are values
	start := time.Now()
	defer func() {
		metrics.RecordMirrorLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if rec.Key == "" {
		return "", ErrEmptyKey
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encode %q: %w", ErrWrite, rec.Key, err)
	}

	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return "", fmt.Errorf("%w: create dir: %w", ErrWrite, err)
	}

	path := w.Path(rec.Key)
	tmp, err := os.CreateTemp(w.dir, ".tmp-"+FileName(rec.Key)+"-*")
	if err != nil {
		return "", fmt.Errorf("%w: temp file: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: write %s: %w", ErrWrite, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: close %s: %w", ErrWrite, tmpName, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		w.logger.Debug(ctx, "chmod failed", logger.String("path", tmpName), logger.Error(err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: rename to %s: %w", ErrWrite, path, err)
	}

	w.logger.Debug(ctx, "record mirrored",
		logger.String("key", rec.Key),
		logger.String("path", path),
		logger.Int("attendees", rec.AttendeeCount),
	)
	return path, nil
}

// FileName maps a key to its mirror file name. Keys made only of
// [A-Za-z0-9.-] that fit the length limit are used as is. Any other key is
// sanitized, truncated and suffixed with '_' and a hash of the raw key. Plain
// names never contain '_', so distinct keys never share a file.
func FileName(key string) string {
	if isPlain(key) {
		return filePrefix + key + fileSuffix
	}
	sum := sha256.Sum256([]byte(key))
	name := sanitize(key)
	if len(name) > maxNameLen-hashLen-1 {
		name = name[:maxNameLen-hashLen-1]
	}
	return filePrefix + name + "_" + hex.EncodeToString(sum[:hashLen/2]) + fileSuffix
}

func isPlain(key string) bool {
	if key == "" || len(key) > maxNameLen || key[0] == '.' || key[len(key)-1] == '.' {
		return false
	}
	for i := 0; i < len(key); i++ {
		if !portable(key[i]) {
			return false
		}
	}
	return true
}

func portable(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '.' || c == '-'
}

// sanitize replaces every byte outside [A-Za-z0-9.-] with '_' and trims dots.
func sanitize(key string) string {
	b := []byte(key)
	for i, c := range b {
		if !portable(c) {
			b[i] = '_'
		}
	}
	return strings.Trim(string(b), ".")
}
