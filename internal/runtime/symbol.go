package runtime

// Well-known symbols. They are process-wide read-only singletons: sharing
// them across contexts is what makes `Symbol.iterator` mean the same thing
// everywhere.
var (
	// SymIterator marks an object as participating in for…of.
	SymIterator = NewSymbol("Symbol.iterator")

	// SymToPrimitive customizes ToPrimitive.
	SymToPrimitive = NewSymbol("Symbol.toPrimitive")

	// SymIsConcatSpreadable affects Array.prototype.concat.
	SymIsConcatSpreadable = NewSymbol("Symbol.isConcatSpreadable")

	// SymToStringTag customizes Object.prototype.toString.
	SymToStringTag = NewSymbol("Symbol.toStringTag")
)
