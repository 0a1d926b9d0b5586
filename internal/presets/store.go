// Package presets stores named scraper configurations.
package presets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"buffcomply/dashboard/models"
)

var ErrPresetNotFound = errors.New("preset not found")

// Store is the configuration store used by the preset endpoints and the CLI.
type Store interface {
	Load(ctx context.Context) ([]models.Preset, error)
	Get(ctx context.Context, name string) (models.Preset, error)
	// Save inserts the preset or replaces the one with the same name.
	Save(ctx context.Context, preset models.Preset) (models.Preset, error)
	Delete(ctx context.Context, name string) error
}

// FileStore keeps all presets in one JSON document on disk.
type FileStore struct {
	path     string
	logger   *logrus.Logger
	validate *validator.Validate
	now      func() time.Time

	mu sync.Mutex
}

func NewFileStore(path string, logger *logrus.Logger) *FileStore {
	return &FileStore{
		path:     path,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *FileStore) Load(ctx context.Context) ([]models.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Get(ctx context.Context, name string) (models.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return models.Preset{}, err
	}
	for _, p := range all {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
}

func (s *FileStore) Save(ctx context.Context, preset models.Preset) (models.Preset, error) {
	preset.Name = strings.TrimSpace(preset.Name)
	if err := s.validate.Struct(preset); err != nil {
		return models.Preset{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Preset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return models.Preset{}, err
	}
	preset.UpdatedAt = s.now().UTC()

	replaced := false
	for i := range all {
		if all[i].Name == preset.Name {
			all[i] = preset
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, preset)
	}

	if err := s.write(all); err != nil {
		return models.Preset{}, err
	}
	s.logger.WithFields(logrus.Fields{"preset": preset.Name, "replaced": replaced}).Info("Preset saved")
	return preset, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, p := range all {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(all) {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}

	if err := s.write(kept); err != nil {
		return err
	}
	s.logger.WithField("preset", name).Info("Preset deleted")
	return nil
}

// read returns the presets sorted by name. A missing file is an empty store.
func (s *FileStore) read() ([]models.Preset, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Preset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Preset{}, nil
	}

	var all []models.Preset
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode presets %s: %w", s.path, err)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *FileStore) write(all []models.Preset) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create presets dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".presets-*.json")
	if err != nil {
		return fmt.Errorf("create temp presets file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write presets: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close presets: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace presets %s: %w", s.path, err)
	}
	return nil
}
