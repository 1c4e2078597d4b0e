// Package config defines the declarative policy consumed by the extraction pipeline:
// ProjectConfig (per-project generation settings) and ConstraintConfig (the C4 validation
// policy). Both are yaml-tagged structs loaded from project.yaml, with the DefaultProjectConfig
// and DefaultConstraintConfig factories supplying every default the pipeline needs at
// construction time.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DataSourceConfig describes the (pipeline-opaque) origin of the data an extractor will
// eventually consume. Forwarded to the planner verbatim.
type DataSourceConfig struct {
	Kind    string                 `yaml:"kind"`
	Options map[string]interface{} `yaml:"options,omitempty"`
}

// GenerationConfig controls one run's refinement and persistence behaviour.
type GenerationConfig struct {
	MaxRetries                  int     `yaml:"max_retries"`
	EnforceValidation            bool    `yaml:"enforce_validation"`
	WriteFiles                   bool    `yaml:"write_files"`
	DryRun                       bool    `yaml:"dry_run"`
	PatternConfidenceThreshold   float64 `yaml:"pattern_confidence_threshold"`
}

// ProjectConfig is the declarative document carrying §3/§6 ProjectConfig fields, loaded from
// project.yaml.
type ProjectConfig struct {
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description,omitempty"`
	DataSource   DataSourceConfig `yaml:"data_source"`
	OutputSchema map[string]interface{} `yaml:"output_schema,omitempty"`
	Constraints  ConstraintConfig `yaml:"constraints"`
	Generation   GenerationConfig `yaml:"generation"`
}

// ConstraintConfig is the C4 validation policy (§3, §4.4, §4.8). Immutable per run; swapped
// wholesale between runs via Engine.UpdateConfig.
type ConstraintConfig struct {
	MaxCyclomaticComplexity int      `yaml:"max_cyclomatic_complexity"`
	MaxMethodLines          int      `yaml:"max_method_lines"`
	MaxFileLines            int      `yaml:"max_file_lines"`
	RequiredInterfaces      []string `yaml:"required_interfaces,omitempty"`
	ForbiddenImports        []string `yaml:"forbidden_imports,omitempty"`
	RequiredImports         []string `yaml:"required_imports,omitempty"`
	AllowPrintStatements    bool     `yaml:"allow_print_statements"`
	RequireTypeHints        bool     `yaml:"require_type_hints"`
	RequireDocstrings       bool     `yaml:"require_docstrings"`
	DangerousCallables      []string `yaml:"dangerous_callables,omitempty"`
	CredentialPatterns      []string `yaml:"credential_patterns,omitempty"`

	// DIDecorator names the dependency-injection marker decorator (walker 2). Configurable;
	// defaults to "inject".
	DIDecorator string `yaml:"di_decorator"`

	// RequiredInterfaceName is the base interface/protocol extractor classes must derive from
	// (walker 1).
	RequiredInterfaceName string `yaml:"required_interface_name"`

	// RequireLogging gates walker 7 (logging walker).
	RequireLogging bool `yaml:"require_logging"`

	// LoggerModule is the import name the logging walker expects (default "logging").
	LoggerModule string `yaml:"logger_module"`
}

// DefaultConstraintConfig returns the policy defaults named in spec §4.8.
func DefaultConstraintConfig() ConstraintConfig {
	return ConstraintConfig{
		MaxCyclomaticComplexity: 10,
		MaxMethodLines:          50,
		MaxFileLines:            500,
		AllowPrintStatements:    false,
		RequireTypeHints:        true,
		RequireDocstrings:       true,
		DangerousCallables: []string{
			"eval", "exec", "subprocess.Popen", "subprocess.run", "subprocess.call",
			"os.system", "pickle.loads", "compile",
		},
		CredentialPatterns: []string{
			`(?i)(api[_-]?key|secret|password|token)\s*=\s*['"][^'"]{8,}['"]`,
		},
		DIDecorator:           "inject",
		RequiredInterfaceName: "BaseExtractor",
		RequireLogging:        true,
		LoggerModule:          "logging",
	}
}

// DefaultProjectConfig returns a ProjectConfig with every generation default named in spec §4.5.
func DefaultProjectConfig(name string) *ProjectConfig {
	return &ProjectConfig{
		Name: name,
		Generation: GenerationConfig{
			MaxRetries:                 3,
			EnforceValidation:          true,
			WriteFiles:                 true,
			DryRun:                     false,
			PatternConfidenceThreshold: 0.5,
		},
		Constraints: DefaultConstraintConfig(),
	}
}

// Load reads and validates a project.yaml document, merging it over DefaultProjectConfig.
func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultProjectConfig("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the entry-time checks named in spec §3 ("Validated at entry").
func (c *ProjectConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: project.name is required")
	}
	for _, r := range c.Name {
		if r == '/' || r == '\\' || r == 0 {
			return fmt.Errorf("config: project.name %q is not a valid filename segment", c.Name)
		}
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("config: generation.max_retries must be >= 0")
	}
	if c.Generation.DryRun {
		c.Generation.WriteFiles = false
	}
	return nil
}
