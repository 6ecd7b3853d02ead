package script

import (
	"reflect"

	"github.com/traefik/yaegi/interp"

	"github.com/roach88/consoleapp/pkg/classmap"
)

// Symbols exposes package classmap to interpreted bootstrap scripts, in the
// layout yaegi extract produces.
var Symbols = interp.Exports{
	"github.com/roach88/consoleapp/pkg/classmap/classmap": {
		// function, constant and variable definitions
		"AddAt":                 reflect.ValueOf(classmap.AddAt),
		"Default":               reflect.ValueOf(&classmap.Default).Elem(),
		"ErrAbstract":           reflect.ValueOf(&classmap.ErrAbstract).Elem(),
		"ErrConstructor":        reflect.ValueOf(&classmap.ErrConstructor).Elem(),
		"ErrDuplicate":          reflect.ValueOf(&classmap.ErrDuplicate).Elem(),
		"ErrInvalidConstructor": reflect.ValueOf(&classmap.ErrInvalidConstructor).Elem(),
		"ErrRequiresArguments":  reflect.ValueOf(&classmap.ErrRequiresArguments).Elem(),
		"Loaders":               reflect.ValueOf(classmap.Loaders),
		"New":                   reflect.ValueOf(classmap.New),
		"RegisteredLoaders":     reflect.ValueOf(classmap.RegisteredLoaders),
		"TypeID":                reflect.ValueOf(classmap.TypeID),

		// type definitions
		"ClassMap": reflect.ValueOf((*classmap.ClassMap)(nil)),
		"Entry":    reflect.ValueOf((*classmap.Entry)(nil)),
		"Symbol":   reflect.ValueOf((*classmap.Symbol)(nil)),
	},
}
