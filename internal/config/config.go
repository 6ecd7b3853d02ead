// Package config resolves the console's global settings from flags and
// CONSOLE_* environment variables.
//
// Settings are needed before cobra dispatches, because the discovered
// commands become cobra subcommands. Load therefore pre-parses the global
// flags that precede the command name and ignores everything else.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/consoleapp/internal/discovery"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CONSOLE"

// ValidFormats are the accepted output formats.
var ValidFormats = []string{"text", "json"}

// Setting keys.
const (
	KeyWorkingDir  = "working_dir"
	KeyProjectRoot = "project_root"
	KeyManifest    = "manifest"
	KeyJournal     = "journal"
	KeyOwner       = "owner"
	KeyVendorDirs  = "vendor_dirs"
	KeyVerbose     = "verbose"
	KeyFormat      = "format"
)

// flagKeys maps flag names to setting keys.
var flagKeys = map[string]string{
	"working-dir":  KeyWorkingDir,
	"project-root": KeyProjectRoot,
	"manifest":     KeyManifest,
	"journal":      KeyJournal,
	"owner":        KeyOwner,
	"vendor-dir":   KeyVendorDirs,
	"verbose":      KeyVerbose,
	"format":       KeyFormat,
}

// Settings are the resolved global settings.
type Settings struct {
	WorkingDir  string
	ProjectRoot string
	Manifest    string
	// Journal is the SQLite path of the execution journal; empty disables it.
	Journal    string
	Owner      string
	VendorDirs []string
	Verbose    bool
	Format     string

	// Args are the arguments following the global flags, command name
	// first. Set by Load only.
	Args []string
}

// Flags defines the global flags on fs. The root command uses the same
// definitions so that help output lists them.
func Flags(fs *pflag.FlagSet) {
	fs.String("working-dir", "", "working directory for manifest and bootstrap lookup")
	fs.String("project-root", "", "project root holding the manifest (default: nearest go.mod)")
	fs.String("manifest", "", "manifest file (default: manifest.{cue,yaml,yml,toml,json} in the project root)")
	fs.String("journal", "", "SQLite file recording command executions")
	fs.String("owner", discovery.DefaultOwner, "identifier prefix excluded from provider discovery")
	fs.StringSlice("vendor-dir", discovery.DefaultVendorDirs, "directories holding third-party code")
	fs.BoolP("verbose", "v", false, "verbose output")
	fs.String("format", "text", "output format (json|text)")
}

// Load resolves settings from the global flags in args and the environment.
// Parsing stops at the first non-flag argument; unknown flags are ignored.
func Load(args []string) (Settings, error) {
	fs := pflag.NewFlagSet("console", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetInterspersed(false)
	fs.Usage = func() {}
	Flags(fs)

	// -h/--help are left for cobra.
	fs.BoolP("help", "h", false, "")

	if err := fs.Parse(args); err != nil {
		return Settings{}, fmt.Errorf("parse flags: %w", err)
	}
	s, err := FromFlags(fs)
	if err != nil {
		return Settings{}, err
	}
	s.Args = fs.Args()
	return s, nil
}

// FromFlags resolves settings from an already parsed flag set.
func FromFlags(fs *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyOwner, discovery.DefaultOwner)
	v.SetDefault(KeyVendorDirs, discovery.DefaultVendorDirs)
	v.SetDefault(KeyFormat, "text")

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	s := Settings{
		WorkingDir:  v.GetString(KeyWorkingDir),
		ProjectRoot: v.GetString(KeyProjectRoot),
		Manifest:    v.GetString(KeyManifest),
		Journal:     v.GetString(KeyJournal),
		Owner:       v.GetString(KeyOwner),
		VendorDirs:  v.GetStringSlice(KeyVendorDirs),
		Verbose:     v.GetBool(KeyVerbose),
		Format:      v.GetString(KeyFormat),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings for values no command could run with.
func (s Settings) Validate() error {
	if !slices.Contains(ValidFormats, s.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", s.Format, ValidFormats)
	}
	return nil
}
