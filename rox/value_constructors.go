package rox

func NewNil() Value                  { return Value{kind: KindNil} }
func NewBool(b bool) Value           { return Value{kind: KindBool, data: b} }
func NewNumber(n float64) Value      { return Value{kind: KindNumber, data: n} }
func NewString(s string) Value       { return Value{kind: KindString, data: s} }
func NewFunction(fn *Function) Value { return Value{kind: KindFunction, data: fn} }
func NewClass(c *Class) Value        { return Value{kind: KindClass, data: c} }
func NewInstance(inst *Instance) Value {
	return Value{kind: KindInstance, data: inst}
}

func NewBuiltin(name string, arity int, fn BuiltinFunc) Value {
	return Value{kind: KindBuiltin, data: &Builtin{Name: name, arity: arity, Fn: fn}}
}
