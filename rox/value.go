package rox

type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindBuiltin
	KindClass
	KindInstance
)

// Value is the tagged runtime representation of every script value. The
// set of kinds is closed; dispatch on it is always a switch over Kind.
type Value struct {
	kind ValueKind
	data any
}
