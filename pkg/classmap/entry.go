package classmap

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrDuplicate is returned when an identifier is added twice to one map.
	ErrDuplicate = errors.New("identifier already registered")
	// ErrInvalidConstructor is returned by Add for values that cannot describe
	// a type, and for constructors returning an interface without an
	// explicit identifier.
	ErrInvalidConstructor = errors.New("invalid constructor")
	// ErrAbstract is returned by Entry.New for interface types.
	ErrAbstract = errors.New("type is not instantiable")
	// ErrRequiresArguments is returned by Entry.New for constructors with required parameters.
	ErrRequiresArguments = errors.New("constructor requires arguments")
	// ErrConstructor wraps errors returned, and panics raised, by constructors.
	ErrConstructor = errors.New("constructor failed")
)

var errorType = reflect.TypeFor[error]()

// Symbol is one identifier -> source location record of a class map.
type Symbol struct {
	ID       string
	Location string
}

// Entry is a registered type: its symbol record plus what is needed to
// introspect and construct it.
type Entry struct {
	ID       string
	Location string

	// product is the type a successful New returns.
	product reflect.Type
	// ctor is the constructor func; invalid for type-only entries.
	ctor reflect.Value
}

// Symbol returns the entry's identifier and location.
func (e Entry) Symbol() Symbol {
	return Symbol{ID: e.ID, Location: e.Location}
}

// Type returns the type produced by New. Type-only struct entries produce
// a pointer to the struct.
func (e Entry) Type() reflect.Type {
	return e.product
}

// Implements reports whether the produced type implements iface.
// The check is strict: an entry whose produced type is iface itself does
// not count, since nothing concrete can be learned about it before
// construction.
func (e Entry) Implements(iface reflect.Type) bool {
	if e.product == nil || iface == nil || iface.Kind() != reflect.Interface {
		return false
	}
	if e.product == iface {
		return false
	}
	return e.product.Implements(iface)
}

// New constructs a value of the entry's type.
//
// Constructors are called with no arguments; a func whose only parameter is
// variadic counts as all-default. Interface types fail with ErrAbstract,
// other parameters with ErrRequiresArguments. A returned error, a nil
// product, or a panic is reported as ErrConstructor.
func (e Entry) New() (v any, err error) {
	if e.product == nil {
		return nil, fmt.Errorf("%w: %s has no type information", ErrAbstract, e.ID)
	}

	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = fmt.Errorf("%w: %s panicked: %v", ErrConstructor, e.ID, r)
		}
	}()

	if !e.ctor.IsValid() {
		if e.product.Kind() == reflect.Interface {
			return nil, fmt.Errorf("%w: %s is an interface", ErrAbstract, e.ID)
		}
		return reflect.New(e.product.Elem()).Interface(), nil
	}

	ft := e.ctor.Type()
	if required := requiredParams(ft); required > 0 {
		return nil, fmt.Errorf("%w: %s needs %d argument(s)", ErrRequiresArguments, e.ID, required)
	}

	out := e.ctor.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		cause, _ := out[1].Interface().(error)
		return nil, fmt.Errorf("%w: %s: %w", ErrConstructor, e.ID, cause)
	}
	if isNilValue(out[0]) {
		return nil, fmt.Errorf("%w: %s returned nil", ErrConstructor, e.ID)
	}

	return out[0].Interface(), nil
}

// newEntry validates ctor and derives the produced type and, when id is
// empty, the identifier.
func newEntry(id, location string, ctor any) (Entry, error) {
	if ctor == nil {
		return Entry{}, fmt.Errorf("%w: nil", ErrInvalidConstructor)
	}

	var e Entry
	if t, ok := ctor.(reflect.Type); ok {
		e.product = typeOnlyProduct(t)
	} else {
		v := reflect.ValueOf(ctor)
		if v.Kind() != reflect.Func {
			return Entry{}, fmt.Errorf("%w: %T is neither a func nor a reflect.Type", ErrInvalidConstructor, ctor)
		}
		if v.IsNil() {
			return Entry{}, fmt.Errorf("%w: nil func", ErrInvalidConstructor)
		}
		ft := v.Type()
		switch {
		case ft.NumOut() == 1:
		case ft.NumOut() == 2 && ft.Out(1) == errorType:
		default:
			return Entry{}, fmt.Errorf("%w: %s must return T or (T, error)", ErrInvalidConstructor, ft)
		}
		e.product = ft.Out(0)
		e.ctor = v
		// The interface would name every such constructor alike.
		if id == "" && e.product.Kind() == reflect.Interface {
			return Entry{}, fmt.Errorf("%w: %s returns interface %s; register it with an explicit identifier", ErrInvalidConstructor, ft, e.product)
		}
	}

	if id == "" {
		id = TypeID(e.product)
	}
	if id == "" {
		return Entry{}, fmt.Errorf("%w: anonymous type %s needs an explicit identifier", ErrInvalidConstructor, e.product)
	}

	e.ID = id
	e.Location = location
	return e, nil
}

// TypeID returns the fully-qualified identifier of t: import path, a dot,
// and the type name. Pointers are unwrapped. Unnamed types yield "".
func TypeID(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ""
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// typeOnlyProduct maps a registered type to what reflect.New-based
// construction produces.
func typeOnlyProduct(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer:
		return t
	default:
		return reflect.PointerTo(t)
	}
}

func requiredParams(ft reflect.Type) int {
	n := ft.NumIn()
	if ft.IsVariadic() {
		n--
	}
	return n
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
