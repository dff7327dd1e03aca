package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"fortio.org/log"
	"gopkg.in/yaml.v3"
)

// ManifestName is the project file looked up by FindManifest.
const ManifestName = "kua.yml"

// Manifest represents the parsed contents of kua.yml.
type Manifest struct {
	Path        string
	Name        string
	Version     string
	Targets     map[string]*TargetSpec
	TargetOrder []string
	Log         LogConfig
	Runtime     RuntimeConfig
}

// TargetSpec describes a runnable script from the manifest.
type TargetSpec struct {
	Name string
	Type TargetType
	Main string
}

// TargetType enumerates supported target kinds.
type TargetType string

const (
	TargetTypeExecutable TargetType = "executable"
	TargetTypeTest       TargetType = "test"
)

// LogConfig controls the console log mirror and the diagnostic log level.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// RuntimeConfig bounds a single run.
type RuntimeConfig struct {
	MaxCallDepth int           `yaml:"max_call_depth"`
	Timeout      time.Duration `yaml:"timeout"`
}

// DefaultRuntime fills runtime settings the manifest leaves unset.
var DefaultRuntime = RuntimeConfig{MaxCallDepth: 200}

// DefaultLog fills log settings the manifest leaves unset.
var DefaultLog = LogConfig{Level: "info"}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// FindManifest walks up from dir looking for kua.yml.
func FindManifest(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(current, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNoManifest
		}
		current = parent
	}
}

var ErrNoManifest = errors.New("manifest: " + ManifestName + " not found")

// LoadManifest parses kua.yml from disk, returning a validated manifest with defaults applied.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	if err := mergo.Merge(&manifest.Runtime, DefaultRuntime); err != nil {
		return nil, fmt.Errorf("manifest: runtime defaults: %w", err)
	}
	if err := mergo.Merge(&manifest.Log, DefaultLog); err != nil {
		return nil, fmt.Errorf("manifest: log defaults: %w", err)
	}
	log.LogVf("loaded manifest %s (%d targets)", absPath, len(manifest.TargetOrder))
	return manifest, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	seen := make(map[string]struct{}, len(m.TargetOrder))
	for _, name := range m.TargetOrder {
		target := m.Targets[name]
		if _, dup := seen[strings.ToLower(name)]; dup {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q is declared more than once", name))
		}
		seen[strings.ToLower(name)] = struct{}{}
		if target.Type == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q missing type", name))
		} else if !target.Type.IsValid() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q has unsupported type %q", name, target.Type))
		}
		if target.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main entrypoint", name))
		}
	}
	if m.Log.Level != "" {
		if _, err := log.ValidateLevel(m.Log.Level); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("log.level: %v", err))
		}
	}
	if m.Runtime.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, "runtime.max_call_depth must not be negative")
	}
	if m.Runtime.Timeout < 0 {
		errs.Issues = append(errs.Issues, "runtime.timeout must not be negative")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// IsValid reports whether the target type is recognised.
func (t TargetType) IsValid() bool {
	switch t {
	case TargetTypeExecutable, TargetTypeTest:
		return true
	default:
		return false
	}
}

var ErrNoExecutableTarget = errors.New("manifest: no executable targets defined")

// DefaultExecutableTarget returns the first executable target in manifest order.
func (m *Manifest) DefaultExecutableTarget() (*TargetSpec, error) {
	if m == nil {
		return nil, ErrNoExecutableTarget
	}
	for _, name := range m.TargetOrder {
		if target := m.Targets[name]; target.Type == TargetTypeExecutable {
			return target, nil
		}
	}
	return nil, ErrNoExecutableTarget
}

// FindTarget looks up a target by name, ignoring case.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if target, ok := m.Targets[name]; ok {
		return target, true
	}
	for _, key := range m.TargetOrder {
		if strings.EqualFold(key, name) {
			return m.Targets[key], true
		}
	}
	return nil, false
}

// MainPath resolves a target's entrypoint relative to the manifest directory.
func (m *Manifest) MainPath(target *TargetSpec) string {
	if filepath.IsAbs(target.Main) {
		return target.Main
	}
	return filepath.Join(filepath.Dir(m.Path), target.Main)
}

type manifestFile struct {
	Name    string        `yaml:"name"`
	Version string        `yaml:"version"`
	Targets targetMap     `yaml:"targets"`
	Log     LogConfig     `yaml:"log"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

type targetYAML struct {
	Type TargetType `yaml:"type"`
	Main string     `yaml:"main"`
}

// targetMap keeps targets in declaration order so the first executable is the default.
type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		entry := &targetYAML{Type: TargetTypeExecutable}
		if valueNode.Kind == yaml.ScalarNode {
			// `name: path/to/main.lua` shorthand
			entry.Main = valueNode.Value
		} else if err := valueNode.Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:        path,
		Name:        strings.TrimSpace(mf.Name),
		Version:     strings.TrimSpace(mf.Version),
		Targets:     make(map[string]*TargetSpec, len(mf.Targets.items)),
		TargetOrder: make([]string, 0, len(mf.Targets.items)),
		Log: LogConfig{
			File:  strings.TrimSpace(mf.Log.File),
			Level: strings.TrimSpace(mf.Log.Level),
		},
		Runtime: mf.Runtime,
	}
	for _, item := range mf.Targets.items {
		result.TargetOrder = append(result.TargetOrder, item.name)
		if _, exists := result.Targets[item.name]; exists {
			continue
		}
		result.Targets[item.name] = &TargetSpec{
			Name: item.name,
			Type: item.spec.Type,
			Main: strings.TrimSpace(item.spec.Main),
		}
	}
	return result
}
