package rox

import (
	"fmt"
	"math"
	"strconv"
)

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "builtin"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String renders the value the way `print` shows it.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.data.(float64))
	case KindString:
		return v.data.(string)
	case KindFunction:
		return v.data.(*Function).String()
	case KindBuiltin:
		return v.data.(*Builtin).String()
	case KindClass:
		return v.data.(*Class).String()
	case KindInstance:
		return v.data.(*Instance).String()
	default:
		return fmt.Sprintf("<%v>", v.kind)
	}
}

// formatNumber drops the fractional part of integral values, so 3.0 prints
// as "3" and 2.5 as "2.5".
func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "nan"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Truthy reports whether the value counts as true in a condition. Only nil
// and false are falsey.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool()
	default:
		return true
	}
}

// Equal compares primitives by value and objects by identity.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool() == other.Bool()
	case KindNumber:
		return v.data.(float64) == other.data.(float64)
	case KindString:
		return v.data.(string) == other.data.(string)
	case KindFunction:
		return v.data.(*Function) == other.data.(*Function)
	case KindBuiltin:
		return v.data.(*Builtin) == other.data.(*Builtin)
	case KindClass:
		return v.data.(*Class) == other.data.(*Class)
	case KindInstance:
		return v.data.(*Instance) == other.data.(*Instance)
	default:
		return false
	}
}
