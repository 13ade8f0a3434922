package artifact

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dotview/pkg/cache"
	"github.com/matzehuels/dotview/pkg/errors"
)

// FileStore keeps each artifact as a data file plus a JSON metadata file.
type FileStore struct {
	dir string
}

// NewFileStore creates a store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create artifact dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store root directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Put(_ context.Context, name, format string, data []byte) (Artifact, error) {
	a := Artifact{
		ID:      uuid.NewString(),
		Name:    name,
		Format:  format,
		Size:    int64(len(data)),
		Digest:  cache.Hash(data),
		Created: time.Now().UTC(),
	}
	if err := os.WriteFile(s.dataPath(a.ID), data, 0o644); err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeIO, err, "write artifact")
	}
	meta, err := json.Marshal(a)
	if err != nil {
		return Artifact{}, err
	}
	if err := os.WriteFile(s.metaPath(a.ID), meta, 0o644); err != nil {
		_ = os.Remove(s.dataPath(a.ID))
		return Artifact{}, errors.Wrap(errors.ErrCodeIO, err, "write artifact metadata")
	}
	return a, nil
}

func (s *FileStore) Get(_ context.Context, id string) ([]byte, Artifact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, Artifact{}, errors.New(errors.ErrCodeNotFound, "artifact %q not found", id)
	}
	a, err := s.readMeta(id)
	if err != nil {
		return nil, Artifact{}, err
	}
	data, err := os.ReadFile(s.dataPath(id))
	if err != nil {
		return nil, Artifact{}, errors.Wrap(errors.ErrCodeIO, err, "read artifact %s", id)
	}
	return data, a, nil
}

func (s *FileStore) List(_ context.Context) ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "list artifacts")
	}
	var out []Artifact
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		a, err := s.readMeta(id)
		if err != nil {
			continue
		}
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Artifact) int { return b.Created.Compare(a.Created) })
	return out, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) readMeta(id string) (Artifact, error) {
	raw, err := os.ReadFile(s.metaPath(id))
	if os.IsNotExist(err) {
		return Artifact{}, errors.New(errors.ErrCodeNotFound, "artifact %q not found", id)
	}
	if err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeIO, err, "read artifact %s", id)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeInternal, err, "corrupt artifact metadata %s", id)
	}
	return a, nil
}

func (s *FileStore) dataPath(id string) string { return filepath.Join(s.dir, id+".bin") }
func (s *FileStore) metaPath(id string) string { return filepath.Join(s.dir, id+".json") }

var _ Store = (*FileStore)(nil)
