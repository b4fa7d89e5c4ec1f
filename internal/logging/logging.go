// Package logging configures slog for the controller: text records written
// to stdout and to a log file under the configured directory, mirroring the
// original service's file+console setup.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
)

// Init opens <dir>/control-system.log and returns a logger writing to both
// the file and stdout, plus the file handle for Close() on shutdown. If the
// file cannot be opened the logger falls back to stdout only.
func Init(dir string) (*slog.Logger, *os.File) {
	_ = os.MkdirAll(dir, 0o755)

	path := filepath.Join(dir, "control-system.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		logger.Error("failed to open log file, stdout only", "path", path, "error", err)
		return logger, nil
	}

	w := io.MultiWriter(f, os.Stdout)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// route stray stdlib log output through the same writer
	log.SetOutput(w)
	return logger, f
}
