// Package classmap is the process-wide registry of discoverable types: an
// ordered identifier -> source location table that also knows how to
// introspect and construct each registered type.
//
// Packages add their constructors from init functions. The source location
// recorded for an entry is the file containing the Add call, which lets
// discovery filter by file naming convention and by vendored location
// before any type is inspected:
//
//	func init() {
//		classmap.MustAdd(NewDeployCommand)           // func() *DeployCommand
//		classmap.MustAdd(reflect.TypeFor[Status]())  // constructed with reflect.New
//	}
//
// A ClassMap can be registered as an active loader. The loader list lets a
// bootstrap script install its own map and lets callers detect that it did.
package classmap

import (
	"fmt"
	"iter"
	"runtime"
	"slices"
	"sync"
)

// ClassMap is an ordered set of entries keyed by identifier.
// It is not safe for concurrent mutation; entries are expected to be added
// during package initialization.
type ClassMap struct {
	entries []Entry
	index   map[string]int
}

// New creates an empty, unregistered class map.
func New() *ClassMap {
	return &ClassMap{index: make(map[string]int)}
}

// Add registers ctor under the identifier derived from its produced type.
// The location is the file of the caller.
func (m *ClassMap) Add(ctor any) (Symbol, error) {
	return m.add("", callerFile(2), ctor)
}

// AddAt registers ctor with an explicit identifier and location.
// An empty id is derived from the produced type.
func (m *ClassMap) AddAt(id, location string, ctor any) (Symbol, error) {
	return m.add(id, location, ctor)
}

func (m *ClassMap) add(id, location string, ctor any) (Symbol, error) {
	e, err := newEntry(id, location, ctor)
	if err != nil {
		return Symbol{}, err
	}
	if err := m.Put(e); err != nil {
		return Symbol{}, err
	}
	return e.Symbol(), nil
}

// Put appends an existing entry, typically one taken from another map.
func (m *ClassMap) Put(e Entry) error {
	if _, exists := m.index[e.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.ID)
	}
	m.index[e.ID] = len(m.entries)
	m.entries = append(m.entries, e)
	return nil
}

// Remove deletes the entry for id. Reports whether it existed.
func (m *ClassMap) Remove(id string) bool {
	i, ok := m.index[id]
	if !ok {
		return false
	}
	m.entries = slices.Delete(m.entries, i, i+1)
	m.reindex()
	return true
}

// Relocate changes the recorded location of id. Reports whether it existed.
func (m *ClassMap) Relocate(id, location string) bool {
	i, ok := m.index[id]
	if !ok {
		return false
	}
	m.entries[i].Location = location
	return true
}

func (m *ClassMap) reindex() {
	clear(m.index)
	for i, e := range m.entries {
		m.index[e.ID] = i
	}
}

// Lookup returns the entry registered under id.
func (m *ClassMap) Lookup(id string) (Entry, bool) {
	i, ok := m.index[id]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Len returns the number of entries.
func (m *ClassMap) Len() int {
	return len(m.entries)
}

// Symbols iterates identifier -> location pairs in registration order.
func (m *ClassMap) Symbols() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, e := range m.entries {
			if !yield(e.ID, e.Location) {
				return
			}
		}
	}
}

// Entries returns a copy of all entries in registration order.
func (m *ClassMap) Entries() []Entry {
	return slices.Clone(m.entries)
}

// Clone returns an unregistered copy of the map.
func (m *ClassMap) Clone() *ClassMap {
	c := &ClassMap{
		entries: slices.Clone(m.entries),
		index:   make(map[string]int, len(m.entries)),
	}
	c.reindex()
	return c
}

// callerFile returns the file skip frames above callerFile itself.
func callerFile(skip int) string {
	_, file, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return file
}

var (
	loadersMu sync.Mutex
	loaders   []*ClassMap
)

// Register appends m to the active loader list. Registering twice is a no-op.
func (m *ClassMap) Register() {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	if !slices.Contains(loaders, m) {
		loaders = append(loaders, m)
	}
}

// Unregister removes m from the active loader list.
func (m *ClassMap) Unregister() {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	loaders = slices.DeleteFunc(loaders, func(l *ClassMap) bool { return l == m })
}

// IsRegistered reports whether m is in the active loader list.
func (m *ClassMap) IsRegistered() bool {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	return slices.Contains(loaders, m)
}

// RegisteredLoaders returns the number of active loaders.
func RegisteredLoaders() int {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	return len(loaders)
}

// Loaders returns the active loaders in registration order.
func Loaders() []*ClassMap {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	return slices.Clone(loaders)
}

// Default is the process-wide class map, registered as a loader at startup.
var Default = New()

func init() {
	Default.Register()
}

// Add registers ctor in Default, recording the caller's file as location.
func Add(ctor any) (Symbol, error) {
	return Default.add("", callerFile(2), ctor)
}

// MustAdd is like Add but panics on error. Intended for init functions.
func MustAdd(ctor any) Symbol {
	sym, err := Default.add("", callerFile(2), ctor)
	if err != nil {
		panic(fmt.Sprintf("classmap: %v", err))
	}
	return sym
}

// AddAt registers ctor in Default with an explicit identifier and location.
func AddAt(id, location string, ctor any) (Symbol, error) {
	return Default.add(id, location, ctor)
}
