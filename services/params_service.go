package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/open-teleop/quadcontrol/pkg/config"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// Notification sent after the parameter file changes on disk.
const (
	ParamsUpdatedTopic = "quad.params.notification"
	MsgTypeParamsSaved = "PARAMS_UPDATED"
)

// ErrInvalidParams marks an update rejected before anything was written.
var ErrInvalidParams = errors.New("invalid parameter YAML")

// ParamsNotifier defines the interface for announcing parameter updates.
// ZeroMQService satisfies it.
type ParamsNotifier interface {
	PublishJSON(topic string, messageType string, data interface{}) error
}

// ParamsService manages the simulator parameter file. Updated parameters are
// persisted and take effect when the controller is next built; the running
// controller keeps the bundle it loaded at start.
type ParamsService interface {
	LoadParams() error
	GetStore() *config.ParamStore
	GetParamsYAML() ([]byte, error)
	UpdateParams(newParamsYAML []byte) error
	SetNotifier(n ParamsNotifier)
}

type paramsService struct {
	path     string
	logger   customlog.Logger
	notifier ParamsNotifier
	store    *config.ParamStore
	mu       sync.RWMutex
}

// NewParamsService creates a ParamsService for the file at path. A file that
// fails to load is logged and leaves the service without a store.
func NewParamsService(path string, logger customlog.Logger) (ParamsService, error) {
	if path == "" {
		return nil, fmt.Errorf("parameter file path cannot be empty")
	}
	if logger == nil {
		logger, _ = customlog.NewLogrusLogger("info", "")
		logger.Warnf("No logger provided to ParamsService, using default.")
	}

	s := &paramsService{path: path, logger: logger}
	if err := s.LoadParams(); err != nil {
		logger.Warnf("Initial load of parameter file '%s' failed: %v", path, err)
		return s, nil
	}

	logger.Infof("ParamsService initialized for path: %s", path)
	return s, nil
}

// LoadParams reads the parameter file from disk.
func (s *paramsService) LoadParams() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Infof("Loading parameters from: %s", s.path)
	store, err := config.LoadParamStore(s.path)
	if err != nil {
		s.store = nil
		return err
	}
	s.store = store
	s.logger.Infof("Loaded %d parameters", len(store.Keys()))
	return nil
}

// GetStore returns the loaded store, or nil when none could be loaded.
func (s *paramsService) GetStore() *config.ParamStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// GetParamsYAML returns the parameter file as stored on disk.
func (s *paramsService) GetParamsYAML() ([]byte, error) {
	s.mu.RLock()
	path := s.path
	s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading parameter file '%s': %w", path, err)
	}
	return data, nil
}

// UpdateParams validates newParamsYAML, writes it to the parameter file and
// announces the change.
func (s *paramsService) UpdateParams(newParamsYAML []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := config.ParseParamStore(newParamsYAML)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if len(store.Keys()) == 0 {
		return fmt.Errorf("%w: no parameters", ErrInvalidParams)
	}

	if err := s.persistUnlocked(newParamsYAML); err != nil {
		return err
	}
	s.store = store
	s.logger.Infof("Persisted %d parameters to %s; they apply on restart", len(store.Keys()), s.path)

	if s.notifier != nil {
		go func(n ParamsNotifier, keys int) {
			notification := map[string]interface{}{
				"file": s.path,
				"keys": keys,
			}
			if err := n.PublishJSON(ParamsUpdatedTopic, MsgTypeParamsSaved, notification); err != nil {
				s.logger.Warnf("Failed to publish parameter update notification: %v", err)
			}
		}(s.notifier, len(store.Keys()))
	}
	return nil
}

// persistUnlocked replaces the parameter file through a temporary file in the
// same directory. The caller holds the lock.
func (s *paramsService) persistUnlocked(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".params-*.yaml")
	if err != nil {
		return fmt.Errorf("error writing parameter file '%s': %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing parameter file '%s': %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing parameter file '%s': %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("error writing parameter file '%s': %w", s.path, err)
	}
	return nil
}

// SetNotifier allows injecting the notifier after initialization.
func (s *paramsService) SetNotifier(n ParamsNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}
