// Package declared loads the list of dependencies a program declares it
// needs, together with the settings that tune how they are reconciled.
package declared

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/agentstation/vercheck/internal/matcher"
	"github.com/agentstation/vercheck/pkg/constants"
	"github.com/agentstation/vercheck/pkg/errors"
)

// Probe names a pseudo entry computed by a provider instead of a loader.
type Probe string

// Built-in probes.
const (
	ProbeRuntime  Probe = "runtime"
	ProbePlatform Probe = "platform"
	ProbeCrypto   Probe = "crypto"
)

// Valid reports whether p is a known probe.
func (p Probe) Valid() bool {
	switch p {
	case ProbeRuntime, ProbePlatform, ProbeCrypto:
		return true
	}
	return false
}

// Package is one declared dependency. Exactly one of Module and Probe is set.
type Package struct {
	Name   string `yaml:"name" json:"name"`
	Module string `yaml:"module,omitempty" json:"module,omitempty"`
	Probe  Probe  `yaml:"probe,omitempty" json:"probe,omitempty"`
}

// Validate checks that p is well formed.
func (p Package) Validate() error {
	switch {
	case p.Name == "":
		return errors.NewValidationError("name", p.Name, "package name is required")
	case p.Module != "" && p.Probe != "":
		return errors.NewValidationError("module", p.Module, fmt.Sprintf("package %q sets both module and probe", p.Name))
	case p.Module == "" && p.Probe == "":
		return errors.NewValidationError("module", p.Module, fmt.Sprintf("package %q sets neither module nor probe", p.Name))
	case p.Probe != "" && !p.Probe.Valid():
		return errors.NewValidationError("probe", p.Probe, fmt.Sprintf("package %q uses unknown probe %q", p.Name, p.Probe))
	}
	return nil
}

// Validate checks every package in the list.
func Validate(pkgs []Package) error {
	for i, p := range pkgs {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("package %d: %w", i, err)
		}
	}
	return nil
}

// Rename records that a package is published in the manifest under another
// name. Tag is the comment the import side must carry for the pair to match.
type Rename struct {
	Manifest string `yaml:"manifest" json:"manifest"`
	Tag      string `yaml:"tag,omitempty" json:"tag,omitempty"`
}

// Noise holds log message patterns suppressed while dependencies load.
// Persistent patterns stay active for the rest of the process.
type Noise struct {
	Persistent []string `yaml:"persistent,omitempty" json:"persistent,omitempty"`
	Scoped     []string `yaml:"scoped,omitempty" json:"scoped,omitempty"`
}

// Config is the declared dependency configuration.
type Config struct {
	Host                 string            `yaml:"host,omitempty" json:"host,omitempty"`
	Packages             []Package         `yaml:"packages,omitempty" json:"packages,omitempty"`
	Requirements         []string          `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	NotImportVersionable []string          `yaml:"not_import_versionable,omitempty" json:"not_import_versionable,omitempty"`
	Ignorable            []string          `yaml:"ignorable,omitempty" json:"ignorable,omitempty"`
	Renames              map[string]Rename `yaml:"renames,omitempty" json:"renames,omitempty"`
	Noise                Noise             `yaml:"noise,omitempty" json:"noise,omitempty"`
}

// Default declares the host program, every dependency in order and the three
// built-in probes. The requirements are the same dependency paths.
func Default(host string, deps []string) *Config {
	cfg := &Config{Host: host}
	if host != "" {
		cfg.Packages = append(cfg.Packages, Package{Name: host, Module: host})
	}
	for _, dep := range deps {
		cfg.Packages = append(cfg.Packages, Package{Name: dep, Module: dep})
	}
	cfg.Packages = append(cfg.Packages,
		Package{Name: constants.RuntimeEntry, Probe: ProbeRuntime},
		Package{Name: constants.PlatformEntry, Probe: ProbePlatform},
		Package{Name: constants.CryptoEntry, Probe: ProbeCrypto},
	)
	cfg.Requirements = append([]string(nil), deps...)
	return cfg
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse validates data against the configuration schema and decodes it.
// source names the data in error messages.
func Parse(data []byte, source string) (*Config, error) {
	if err := validateSchema(data, source); err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, errors.WrapParse("yaml", source, err)
	}
	if err := Validate(cfg.Packages); err != nil {
		return nil, err
	}
	for field, patterns := range map[string][]string{
		"not_import_versionable": cfg.NotImportVersionable,
		"ignorable":              cfg.Ignorable,
	} {
		if _, err := matcher.NewMultiMatcher(patterns); err != nil {
			return nil, errors.WrapValidation(field, err)
		}
	}
	return &cfg, nil
}

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "declared.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

func validateSchema(data []byte, source string) error {
	s, err := compiledSchema()
	if err != nil {
		return errors.NewConfigError("declared", "compile schema", err)
	}
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return errors.WrapParse("yaml", source, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.WrapParse("json", source, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := s.Validate(doc); err != nil {
		return &errors.ValidationError{Field: source, Message: err.Error()}
	}
	return nil
}
