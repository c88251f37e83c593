package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParamStore is a read-only key/value view of a YAML parameter file. Nested
// mappings are flattened into dotted keys, so
//
//	QuadControlParams:
//	  Mass: 0.5
//	  kpPQR: [23, 23, 5]
//
// yields the keys QuadControlParams.Mass and QuadControlParams.kpPQR. Key
// lookups ignore case.
type ParamStore struct {
	path   string
	values map[string][]float64
	names  map[string]string // upper-cased key -> key as written
}

// LoadParamStore reads and parses the parameter file at path.
func LoadParamStore(path string) (*ParamStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading param file '%s': %w", path, err)
	}
	s, err := ParseParamStore(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing param file '%s': %w", path, err)
	}
	s.path = path
	return s, nil
}

// ParseParamStore parses parameter YAML. Every leaf must be a number or a
// sequence of numbers.
func ParseParamStore(data []byte) (*ParamStore, error) {
	var root map[string]interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	s := &ParamStore{
		values: make(map[string][]float64),
		names:  make(map[string]string),
	}
	if err := s.flatten("", root); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ParamStore) flatten(prefix string, node map[string]interface{}) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case map[string]interface{}:
			if err := s.flatten(key, val); err != nil {
				return err
			}
		case []interface{}:
			nums := make([]float64, 0, len(val))
			for i, item := range val {
				f, ok := toFloat(item)
				if !ok {
					return fmt.Errorf("param %s[%d]: expected a number, got %v", key, i, item)
				}
				nums = append(nums, f)
			}
			s.set(key, nums)
		default:
			f, ok := toFloat(val)
			if !ok {
				return fmt.Errorf("param %s: expected a number, got %v", key, val)
			}
			s.set(key, []float64{f})
		}
	}
	return nil
}

func (s *ParamStore) set(key string, v []float64) {
	upper := strings.ToUpper(key)
	s.values[upper] = v
	s.names[upper] = key
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Path returns the file the store was loaded from, or "" when parsed from memory.
func (s *ParamStore) Path() string { return s.path }

// Has reports whether key holds a scalar value.
func (s *ParamStore) Has(key string) bool {
	v, ok := s.values[strings.ToUpper(key)]
	return ok && len(v) == 1
}

// Get returns the scalar stored under key, or def when absent or not a scalar.
func (s *ParamStore) Get(key string, def float64) float64 {
	v, ok := s.values[strings.ToUpper(key)]
	if !ok || len(v) != 1 {
		return def
	}
	return v[0]
}

// GetVec3 returns the three numbers stored under key, or def when absent or
// not a three element sequence.
func (s *ParamStore) GetVec3(key string, def [3]float64) ([3]float64, bool) {
	v, ok := s.values[strings.ToUpper(key)]
	if !ok || len(v) != 3 {
		return def, false
	}
	return [3]float64{v[0], v[1], v[2]}, true
}

// Keys returns every key, as written in the file, sorted.
func (s *ParamStore) Keys() []string {
	keys := make([]string, 0, len(s.names))
	for _, k := range s.names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
