package builtins

import "sort"

// GetStandardInitializers returns all built-in initializers sorted by priority
func GetStandardInitializers() []BuiltinInitializer {
	var initializers []BuiltinInitializer

	// Core builtins
	initializers = append(initializers, &ObjectInitializer{})
	initializers = append(initializers, &FunctionInitializer{})
	initializers = append(initializers, &ErrorInitializer{})
	initializers = append(initializers, &ArrayInitializer{})

	// Primitive wrappers
	initializers = append(initializers, &SymbolInitializer{})
	initializers = append(initializers, &StringInitializer{})
	initializers = append(initializers, &NumberInitializer{})
	initializers = append(initializers, &BooleanInitializer{})

	initializers = append(initializers, &RegExpInitializer{})
	initializers = append(initializers, &DateInitializer{})

	// Global constants
	initializers = append(initializers, &GlobalsInitializer{})

	// Sort by priority (lower numbers first)
	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}
