package discovery

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"path"
	"path/filepath"
	"reflect"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/consoleapp/pkg/classmap"
	"github.com/roach88/consoleapp/pkg/console"
)

// DefaultOwner is the identifier prefix of this module. Types under it are
// never treated as discoverable providers.
const DefaultOwner = "github.com/roach88/consoleapp/"

// DefaultVendorDirs are the directory runs that mark third-party code:
// vendored packages and the Go module cache.
var DefaultVendorDirs = []string{"vendor", "pkg/mod"}

const (
	commandSuffix  = "command"
	providerSuffix = "commandprovider"
)

var (
	// ErrNotRegistered is returned when an identifier is absent from the registry.
	ErrNotRegistered = errors.New("identifier not registered")
	// ErrNotCommand is returned when a type does not implement console.Command.
	ErrNotCommand = errors.New("type is not a command")
	// ErrNotProvider is returned when a type does not implement console.Provider.
	ErrNotProvider = errors.New("type is not a command provider")
)

var (
	commandType  = reflect.TypeFor[console.Command]()
	providerType = reflect.TypeFor[console.Provider]()
)

// TypeResolver resolves identifiers to registered entries.
type TypeResolver interface {
	Lookup(id string) (classmap.Entry, bool)
}

// SymbolSource exposes an ordered identifier -> location map.
type SymbolSource interface {
	SymbolMap() iter.Seq2[string, string]
}

// Registry is what the discoverers need from the registry adapter.
type Registry interface {
	SymbolSource
	TypeResolver
}

// Helper holds the predicates and construction primitives shared by the
// discoverers. Its state is fixed after construction.
type Helper struct {
	types      TypeResolver
	owner      string
	mainModule string
	vendorDirs [][]string
	logger     *slog.Logger
}

// HelperOption configures a Helper.
type HelperOption func(*Helper)

// WithOwner sets the identifier prefix excluded from provider discovery.
// An empty prefix disables the guard.
func WithOwner(prefix string) HelperOption {
	return func(h *Helper) {
		h.owner = prefix
	}
}

// WithMainModule sets the main module path. Binaries built with -trimpath
// record import-path locations; with a main module set, such a location is
// own code only when it lies under that module.
func WithMainModule(path string) HelperOption {
	return func(h *Helper) {
		h.mainModule = strings.TrimSuffix(path, "/")
	}
}

// WithVendorDirs replaces the directory runs treated as third-party code.
// Each dir may span several segments, e.g. "pkg/mod".
func WithVendorDirs(dirs ...string) HelperOption {
	return func(h *Helper) {
		h.vendorDirs = splitDirs(dirs)
	}
}

// WithLogger sets the logger used for skipped candidates.
func WithLogger(logger *slog.Logger) HelperOption {
	return func(h *Helper) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHelper creates a Helper resolving types through types.
func NewHelper(types TypeResolver, opts ...HelperOption) *Helper {
	h := &Helper{
		types:      types,
		owner:      DefaultOwner,
		vendorDirs: splitDirs(DefaultVendorDirs),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func splitDirs(dirs []string) [][]string {
	out := make([][]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.Trim(filepath.ToSlash(d), "/")
		if d == "" {
			continue
		}
		out = append(out, strings.Split(d, "/"))
	}
	return out
}

// Canonicalize resolves location to an absolute path with symlinks
// evaluated, in Unicode NFC. When resolution fails (for example the file
// no longer exists) location is returned unchanged.
func (h *Helper) Canonicalize(location string) string {
	if location == "" {
		return location
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return location
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return location
	}
	return norm.NFC.String(resolved)
}

// IsOwnCode reports whether location lies outside every vendor directory
// and outside any versioned module directory (module@version).
func (h *Helper) IsOwnCode(location string) bool {
	slashed := filepath.ToSlash(location)
	segments := strings.Split(slashed, "/")
	// The last segment is the file name.
	segments = segments[:len(segments)-1]
	for _, seg := range segments {
		if strings.Contains(seg, "@v") {
			return false
		}
	}
	for _, dir := range h.vendorDirs {
		if containsRun(segments, dir) {
			return false
		}
	}
	if h.mainModule != "" && len(segments) > 0 && !isAbs(location) {
		return slashed == h.mainModule || strings.HasPrefix(slashed, h.mainModule+"/")
	}
	return true
}

func isAbs(location string) bool {
	return filepath.IsAbs(location) || path.IsAbs(filepath.ToSlash(location))
}

func containsRun(segments, run []string) bool {
	if len(run) == 0 || len(run) > len(segments) {
		return false
	}
	for i := 0; i+len(run) <= len(segments); i++ {
		match := true
		for j, r := range run {
			if segments[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// LooksLikeCommand reports whether the file name follows the command
// convention: HelloCommand.go, hello_command.go, hello-command.go.
func (h *Helper) LooksLikeCommand(location string) bool {
	return strings.HasSuffix(fileStem(location), commandSuffix)
}

// LooksLikeProvider reports whether the file name follows the provider
// convention: AppCommandProvider.go, app_command_provider.go.
func (h *Helper) LooksLikeProvider(location string) bool {
	return strings.HasSuffix(fileStem(location), providerSuffix)
}

// fileStem returns the file name without extension, lower-cased, with
// word separators removed.
func fileStem(location string) string {
	base := path.Base(filepath.ToSlash(location))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ToLower(base)
	return strings.NewReplacer("_", "", "-", "").Replace(base)
}

// IsCommandType reports whether id is registered with a type that
// implements console.Command, other than the interface itself.
func (h *Helper) IsCommandType(id string) bool {
	e, ok := h.types.Lookup(id)
	return ok && e.Implements(commandType)
}

// IsProviderType reports whether id is registered with a type that
// implements console.Provider, other than the interface itself.
func (h *Helper) IsProviderType(id string) bool {
	e, ok := h.types.Lookup(id)
	return ok && e.Implements(providerType)
}

// IsOutsideOwnNamespace reports whether id is not one of the owner's
// types. The owner matches whole path elements: owner "example.com/app"
// covers example.com/app.T and example.com/app/sub.T, not example.com/apps.T.
func (h *Helper) IsOutsideOwnNamespace(id string) bool {
	owner := strings.TrimRight(h.owner, "/.")
	if owner == "" {
		return true
	}
	inside := id == owner ||
		strings.HasPrefix(id, owner+"/") ||
		strings.HasPrefix(id, owner+".")
	return !inside
}

// Construct builds the command registered as id, reporting why it could not.
func (h *Helper) Construct(id string) (console.Command, error) {
	v, err := h.construct(id, commandType, ErrNotCommand)
	if err != nil {
		return nil, err
	}
	cmd, ok := v.(console.Command)
	if !ok {
		return nil, fmt.Errorf("%w: %s produced %T", ErrNotCommand, id, v)
	}
	return cmd, nil
}

// ConstructProvider builds the provider registered as id, reporting why it
// could not.
func (h *Helper) ConstructProvider(id string) (console.Provider, error) {
	v, err := h.construct(id, providerType, ErrNotProvider)
	if err != nil {
		return nil, err
	}
	p, ok := v.(console.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s produced %T", ErrNotProvider, id, v)
	}
	return p, nil
}

func (h *Helper) construct(id string, capability reflect.Type, mismatch error) (any, error) {
	e, ok := h.types.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}
	if !e.Implements(capability) {
		return nil, fmt.Errorf("%w: %s", mismatch, id)
	}
	return e.New()
}

// TryConstruct builds the command registered as id. Failures are logged
// and reported as false, never returned.
func (h *Helper) TryConstruct(id string) (console.Command, bool) {
	cmd, err := h.Construct(id)
	if err != nil {
		h.logger.Debug("skipping command candidate", "id", id, "reason", err)
		return nil, false
	}
	return cmd, true
}

// TryConstructProvider builds the provider registered as id. Failures are
// logged and reported as false, never returned.
func (h *Helper) TryConstructProvider(id string) (console.Provider, bool) {
	p, err := h.ConstructProvider(id)
	if err != nil {
		h.logger.Debug("skipping provider candidate", "id", id, "reason", err)
		return nil, false
	}
	return p, true
}
