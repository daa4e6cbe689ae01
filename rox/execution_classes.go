package rox

const superName = "super"

func (exec *Execution) evalClassStatement(s *ClassStmt, env *Env) error {
	var superclass *Class
	if s.Superclass != nil {
		val, err := exec.evalExpression(s.Superclass, env)
		if err != nil {
			return err
		}
		if val.Kind() != KindClass {
			return exec.kindErrorAt(s.Superclass.Pos(), errOperandType, "Superclass must be a class.")
		}
		superclass = val.Class()
	}

	// The name is visible to the method bodies before the class value exists.
	env.Define(s.Name, NewNil())

	methodEnv := env
	if superclass != nil {
		methodEnv = env.Child()
		methodEnv.Define(superName, NewClass(superclass))
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, decl := range s.Methods {
		methods[decl.Name] = DeclareFunction(decl, methodEnv, decl.Name == initializerName)
	}
	class := DeclareClass(s.Name, superclass, methods)
	env.Assign(s.Name, NewClass(class))

	if superclass != nil {
		exec.log.Debugf("declared class %s < %s with %d methods", class.Name, superclass.Name, len(methods))
	} else {
		exec.log.Debugf("declared class %s with %d methods", class.Name, len(methods))
	}
	return nil
}

func (exec *Execution) evalGetExpr(e *GetExpr, env *Env) (Value, error) {
	object, err := exec.evalExpression(e.Object, env)
	if err != nil {
		return NewNil(), err
	}
	if object.Kind() != KindInstance {
		return NewNil(), exec.kindErrorAt(e.Pos(), errPropertyOnNonObject, "Only instances have properties.")
	}
	val, err := object.Instance().Get(e.Name)
	if err != nil {
		return NewNil(), exec.wrapError(err, e.Pos())
	}
	return val, nil
}

func (exec *Execution) evalSetExpr(e *SetExpr, env *Env) (Value, error) {
	object, err := exec.evalExpression(e.Object, env)
	if err != nil {
		return NewNil(), err
	}
	if object.Kind() != KindInstance {
		return NewNil(), exec.kindErrorAt(e.Pos(), errPropertyOnNonObject, "Only instances have fields.")
	}
	val, err := exec.evalExpression(e.Value, env)
	if err != nil {
		return NewNil(), err
	}
	object.Instance().Set(e.Name, val)
	return val, nil
}

// evalSuperExpr looks the method up starting at the superclass of the class
// whose body contains the expression, not the class of the receiver.
func (exec *Execution) evalSuperExpr(e *SuperExpr, env *Env) (Value, error) {
	superVal, okSuper := env.Get(superName)
	receiver, okThis := env.Get(receiverName)
	if !okSuper || !okThis || superVal.Kind() != KindClass || receiver.Kind() != KindInstance {
		return NewNil(), exec.errorAt(e.Pos(), "Can't use 'super' outside of a subclass method.")
	}
	superclass := superVal.Class()
	method, ok := superclass.FindMethod(e.Method)
	if !ok {
		return NewNil(), exec.wrapError(&PropertyError{Class: superclass.Name, Property: e.Method, Superclass: true}, e.Pos())
	}
	return NewFunction(method.Bind(receiver.Instance())), nil
}
