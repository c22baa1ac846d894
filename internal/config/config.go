// Package config holds the immutable option set a merge run is
// parameterized with. Options are resolved once (defaults, then the
// project file, then CLI flags) and passed down; the core never consults
// process-global state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Strategy selects the textual merge implementation for a whole run.
type Strategy string

const (
	StrategyDiff3          Strategy = "diff3"
	StrategyCSDiffAndDiff3 Strategy = "csdiff+diff3"
)

// Options configures a merge run. The zero value is not useful; start
// from Default.
type Options struct {
	// ShowBase includes the base contribution in conflict hunks.
	ShowBase bool `yaml:"showBase"`

	// IgnoreWhitespace avoids false-positive conflicts due to spacing.
	IgnoreWhitespace bool `yaml:"ignoreWhitespace"`

	// Git suppresses non-essential diagnostics and loosens the
	// file-extension check, for use as a git merge driver.
	Git bool `yaml:"git"`

	// TextualMergeStrategy selects how leaf bodies are merged.
	TextualMergeStrategy Strategy `yaml:"textualMergeStrategy"`

	// Per-handler toggles. The deletions handler is always on.
	TypeAmbiguityErrorHandler                      bool `yaml:"typeAmbiguityErrorHandler"`
	NewElementReferencingEditedOneHandler          bool `yaml:"newElementReferencingEditedOneHandler"`
	MethodAndConstructorRenamingAndDeletionHandler bool `yaml:"methodAndConstructorRenamingAndDeletionHandler"`
	InitializationBlocksHandler                    bool `yaml:"initializationBlocksHandler"`
	InitializationBlocksHandlerMultipleBlocks      bool `yaml:"initializationBlocksHandlerMultipleBlocks"`
	DuplicatedDeclarationHandler                   bool `yaml:"duplicatedDeclarationHandler"`
}

// Default returns the standard option set: whitespace-insensitive diff3
// with every handler enabled except the multiple-blocks variant of the
// initialization-blocks handler, which is mutually exclusive with the
// single-block one.
func Default() *Options {
	return &Options{
		IgnoreWhitespace:     true,
		TextualMergeStrategy: StrategyDiff3,

		TypeAmbiguityErrorHandler:                      true,
		NewElementReferencingEditedOneHandler:          true,
		MethodAndConstructorRenamingAndDeletionHandler: true,
		InitializationBlocksHandler:                    true,
		DuplicatedDeclarationHandler:                   true,
	}
}

// fileOptions mirrors Options with optional fields so an absent key keeps
// the default instead of zeroing it.
type fileOptions struct {
	ShowBase             *bool     `yaml:"showBase"`
	IgnoreWhitespace     *bool     `yaml:"ignoreWhitespace"`
	Git                  *bool     `yaml:"git"`
	TextualMergeStrategy *Strategy `yaml:"textualMergeStrategy"`

	TypeAmbiguityErrorHandler                      *bool `yaml:"typeAmbiguityErrorHandler"`
	NewElementReferencingEditedOneHandler          *bool `yaml:"newElementReferencingEditedOneHandler"`
	MethodAndConstructorRenamingAndDeletionHandler *bool `yaml:"methodAndConstructorRenamingAndDeletionHandler"`
	InitializationBlocksHandler                    *bool `yaml:"initializationBlocksHandler"`
	InitializationBlocksHandlerMultipleBlocks      *bool `yaml:"initializationBlocksHandlerMultipleBlocks"`
	DuplicatedDeclarationHandler                   *bool `yaml:"duplicatedDeclarationHandler"`
}

func (f *fileOptions) apply(o *Options) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&o.ShowBase, f.ShowBase)
	setBool(&o.IgnoreWhitespace, f.IgnoreWhitespace)
	setBool(&o.Git, f.Git)
	if f.TextualMergeStrategy != nil {
		o.TextualMergeStrategy = *f.TextualMergeStrategy
	}
	setBool(&o.TypeAmbiguityErrorHandler, f.TypeAmbiguityErrorHandler)
	setBool(&o.NewElementReferencingEditedOneHandler, f.NewElementReferencingEditedOneHandler)
	setBool(&o.MethodAndConstructorRenamingAndDeletionHandler, f.MethodAndConstructorRenamingAndDeletionHandler)
	setBool(&o.InitializationBlocksHandler, f.InitializationBlocksHandler)
	setBool(&o.InitializationBlocksHandlerMultipleBlocks, f.InitializationBlocksHandlerMultipleBlocks)
	setBool(&o.DuplicatedDeclarationHandler, f.DuplicatedDeclarationHandler)
}

// Load reads structmerge.yml or structmerge.yaml from dir and overlays it
// onto the defaults. A missing file yields the plain defaults.
func Load(dir string) (*Options, error) {
	opts := Default()
	for _, name := range []string{"structmerge.yml", "structmerge.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var f fileOptions
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		f.apply(opts)
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return opts, nil
	}
	return opts, nil
}

// Validate rejects unknown strategy names.
func (o *Options) Validate() error {
	switch o.TextualMergeStrategy {
	case StrategyDiff3, StrategyCSDiffAndDiff3:
		return nil
	default:
		return fmt.Errorf("unknown textual merge strategy %q", o.TextualMergeStrategy)
	}
}
