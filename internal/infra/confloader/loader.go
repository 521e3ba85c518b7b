package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is used when no WithEnvPrefix option is given.
const DefaultEnvPrefix = "EVALBOARD_"

const nestSeparator = "__"

// Loader layers a YAML file, environment variables and explicit overrides
// on top of a defaults-filled target. A Loader is single use.
type Loader struct {
	k            *koanf.Koanf
	envPrefix    string
	filePath     string
	fileOptional bool
	overrides    map[string]any
}

type Option func(*Loader)

func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile names a YAML file that must exist.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath, l.fileOptional = path, false }
}

// WithOptionalConfigFile names a YAML file that is skipped when absent.
func WithOptionalConfigFile(path string) Option {
	return func(l *Loader) { l.filePath, l.fileOptional = path, true }
}

// WithOverrides applies dotted keys ("reconnect.delay") after every other
// source. The CLI maps its global flags here.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) { l.overrides = values }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{k: koanf.New("."), envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source in priority order and unmarshals into target.
// Fields no source mentions keep the values target already had.
func (l *Loader) Load(target any) error {
	if err := l.loadFile(); err != nil {
		return err
	}
	if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if len(l.overrides) > 0 {
		nested := maps.Unflatten(l.overrides, ".")
		if err := l.k.Load(mapProvider(nested), nil); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
	}
	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func (l *Loader) loadFile() error {
	if l.filePath == "" {
		return nil
	}
	if _, err := os.Stat(l.filePath); err != nil {
		if l.fileOptional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load config file: %w", err)
	}
	if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
		return fmt.Errorf("load config file %s: %w", l.filePath, err)
	}
	return nil
}

// envKey maps EVALBOARD_RECONNECT__MAX_ATTEMPTS to reconnect.max_attempts.
func (l *Loader) envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
	return strings.ReplaceAll(s, nestSeparator, ".")
}

// mapProvider hands an already nested map to koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: map provider has no byte form")
}

func (m mapProvider) Read() (map[string]any, error) { return m, nil }
