package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Saver delivers a finished artifact. A Saver is only called after the engine succeeded,
// so it never sees a partial document.
type Saver interface {
	Save(ctx context.Context, art *Artifact) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, art *Artifact) error

// Save implements Saver.
func (f SaverFunc) Save(ctx context.Context, art *Artifact) error {
	return f(ctx, art)
}

// DiscardSaver keeps the artifact in memory only, for callers that stream Artifact.Data
// themselves.
type DiscardSaver struct{}

// Save implements Saver.
func (DiscardSaver) Save(context.Context, *Artifact) error { return nil }

// BatchSaver stores several artifacts as one unit: either every artifact is delivered or
// none is.
type BatchSaver interface {
	SaveAll(ctx context.Context, arts []*Artifact) error
}

// Remover undoes a successful Save. Savers without it cannot roll back a failed batch.
type Remover interface {
	Remove(ctx context.Context, art *Artifact) error
}

// FileSaver writes artifacts into Dir. Files are written to a temporary name and renamed
// into place, so a failed write never leaves a truncated PDF behind.
type FileSaver struct {
	Dir string
}

func (s FileSaver) dir() string {
	if s.Dir == "" {
		return "."
	}
	return s.Dir
}

// Save implements Saver and records the final path in art.Location.
func (s FileSaver) Save(ctx context.Context, art *Artifact) error {
	return s.SaveAll(ctx, []*Artifact{art})
}

// SaveAll implements BatchSaver. Every artifact is staged before the first one is moved
// into place, and files already moved are removed if a later move fails.
func (s FileSaver) SaveAll(ctx context.Context, arts []*Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := s.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	staged := make([]string, 0, len(arts))
	defer func() {
		for _, name := range staged {
			_ = os.Remove(name)
		}
	}()
	for _, art := range arts {
		name, err := stage(dir, art)
		if err != nil {
			return err
		}
		staged = append(staged, name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, art := range arts {
		dest := filepath.Join(dir, art.Filename)
		if err := os.Rename(staged[i], dest); err != nil {
			for _, done := range arts[:i] {
				_ = s.Remove(ctx, done)
			}
			return fmt.Errorf("failed to move %s into place: %w", art.Filename, err)
		}
		art.Location = dest
	}
	return nil
}

// Remove implements Remover. It deletes the file at art.Location.
func (s FileSaver) Remove(_ context.Context, art *Artifact) error {
	if art.Location == "" {
		return nil
	}
	if err := os.Remove(art.Location); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", art.Location, err)
	}
	art.Location = ""
	return nil
}

// stage writes art to a synced temporary file in dir and returns its name.
func stage(dir string, art *Artifact) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+art.Filename+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(art.Data); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to write %s: %w", art.Filename, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to sync %s: %w", art.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to close %s: %w", art.Filename, err)
	}
	return name, nil
}
