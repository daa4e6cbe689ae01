package rox

import (
	"strings"
	"unicode/utf8"
)

func builtinClock(exec *Execution, args []Value) (Value, error) {
	now := exec.engine.config.Clock()
	return NewNumber(float64(now.Unix()) + float64(now.Nanosecond())/1e9), nil
}

func builtinStr(exec *Execution, args []Value) (Value, error) {
	return NewString(args[0].String()), nil
}

func builtinLen(exec *Execution, args []Value) (Value, error) {
	if args[0].Kind() != KindString {
		return NewNil(), newKindError(errOperandType, "len expects a string, got %s", args[0].Kind())
	}
	return NewNumber(float64(utf8.RuneCountInString(args[0].data.(string)))), nil
}

// builtinFields lists an instance's field names, sorted and comma separated.
func builtinFields(exec *Execution, args []Value) (Value, error) {
	if args[0].Kind() != KindInstance {
		return NewNil(), newKindError(errPropertyOnNonObject, "fields expects an instance, got %s", args[0].Kind())
	}
	return NewString(strings.Join(args[0].Instance().Fields(), ", ")), nil
}

func builtinClassOf(exec *Execution, args []Value) (Value, error) {
	if args[0].Kind() != KindInstance {
		return NewNil(), nil
	}
	return NewClass(args[0].Instance().Class()), nil
}
