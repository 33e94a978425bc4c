package vmregister

import (
	"fmt"
	"math"
	"strings"
)

// RegisterStdlib registers the core standard library functions as globals.
//
// This is intentionally narrow: the register VM's job in this repo is to
// hand finished bytecode to the JIT (see jit.Profiler/jit.Compiler wiring
// in NewRegisterVM) and to execute what the JIT declines to specialize.
// Only the builtins the intrinsic folder (internal/hir) needs to mirror
// for constant folding are registered here - numeric/bitwise intrinsics,
// coercions, and the handful of array/string helpers exercised by the
// bytecode test programs.
func (vm *RegisterVM) RegisterStdlib() {
	// String functions
	vm.registerGlobal("upper", createStringFunc("upper", 1, strings.ToUpper))
	vm.registerGlobal("lower", createStringFunc("lower", 1, strings.ToLower))
	vm.registerGlobal("trim", createStringFunc("trim", 1, strings.TrimSpace))

	vm.registerGlobal("len", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "len",
		Arity:  1,
		Function: func(args []Value) (Value, error) {
			val := args[0]
			if IsString(val) {
				return BoxInt(int64(len(ToString(val)))), nil
			} else if IsArray(val) {
				arr := AsArray(val)
				return BoxInt(int64(len(arr.Elements))), nil
			}
			return NilValue(), fmt.Errorf("len expects string or array")
		},
	})

	vm.registerGlobal("type", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "type",
		Arity:  1,
		Function: func(args []Value) (Value, error) {
			return BoxString(ValueType(args[0])), nil
		},
	})

	// Math functions - the intrinsic folder (hir.intrinsicFolder) constant
	// folds calls to exactly these names when all arguments are constants.
	vm.registerGlobal("abs", createMathFunc("abs", 1, math.Abs))
	vm.registerGlobal("sqrt", createMathFunc("sqrt", 1, math.Sqrt))
	vm.registerGlobal("floor", createMathFunc("floor", 1, math.Floor))
	vm.registerGlobal("ceil", createMathFunc("ceil", 1, math.Ceil))
	vm.registerGlobal("round", createMathFunc("round", 1, math.Round))
	vm.registerGlobal("sin", createMathFunc("sin", 1, math.Sin))
	vm.registerGlobal("cos", createMathFunc("cos", 1, math.Cos))
	vm.registerGlobal("tan", createMathFunc("tan", 1, math.Tan))

	vm.registerGlobal("pow", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "pow",
		Arity:  2,
		Function: func(args []Value) (Value, error) {
			return BoxNumber(math.Pow(ToNumber(args[0]), ToNumber(args[1]))), nil
		},
	})

	vm.registerGlobal("min", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "min",
		Arity:  2,
		Function: func(args []Value) (Value, error) {
			return BoxNumber(math.Min(ToNumber(args[0]), ToNumber(args[1]))), nil
		},
	})

	vm.registerGlobal("max", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "max",
		Arity:  2,
		Function: func(args []Value) (Value, error) {
			return BoxNumber(math.Max(ToNumber(args[0]), ToNumber(args[1]))), nil
		},
	})

	// Coercions - mirrors the intrinsic folder's "int"/"real"/"string" cases.
	vm.registerGlobal("int", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "int",
		Arity:  1,
		Function: func(args []Value) (Value, error) {
			return BoxInt(ToInt(args[0])), nil
		},
	})

	vm.registerGlobal("real", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "real",
		Arity:  1,
		Function: func(args []Value) (Value, error) {
			return BoxNumber(ToNumber(args[0])), nil
		},
	})

	vm.registerGlobal("string", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "string",
		Arity:  1,
		Function: func(args []Value) (Value, error) {
			return BoxString(ToString(args[0])), nil
		},
	})

	// Array functions
	vm.registerGlobal("push", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "push",
		Arity:  2,
		Function: func(args []Value) (Value, error) {
			if !IsArray(args[0]) {
				return NilValue(), fmt.Errorf("push expects array")
			}
			arr := AsArray(args[0])
			arr.Elements = append(arr.Elements, args[1])
			return NilValue(), nil
		},
	})

	vm.registerGlobal("pop", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "pop",
		Arity:  1,
		Function: func(args []Value) (Value, error) {
			if !IsArray(args[0]) {
				return NilValue(), fmt.Errorf("pop expects array")
			}
			arr := AsArray(args[0])
			if len(arr.Elements) == 0 {
				return NilValue(), nil
			}
			last := arr.Elements[len(arr.Elements)-1]
			arr.Elements = arr.Elements[:len(arr.Elements)-1]
			return last, nil
		},
	})

	vm.registerGlobal("sum", &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   "sum",
		Arity:  1,
		Function: func(args []Value) (Value, error) {
			if !IsArray(args[0]) {
				return NilValue(), fmt.Errorf("sum expects array")
			}
			arr := AsArray(args[0])
			var total float64
			for _, v := range arr.Elements {
				total += ToNumber(v)
			}
			return BoxNumber(total), nil
		},
	})
}

// registerGlobal registers a native function as a global variable
func (vm *RegisterVM) registerGlobal(name string, fn *NativeFnObj) {
	// Add to GC roots
	vm.gcRoots = append(vm.gcRoots, fn)

	// Assign global ID and store in array
	id := vm.nextGlobalID
	vm.globalNames[name] = id
	vm.globals[id] = BoxPointer(unsafeBoxPointer(fn))
	vm.nextGlobalID++
}

// Helper to create string manipulation functions
func createStringFunc(name string, arity int, fn func(string) string) *NativeFnObj {
	return &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   name,
		Arity:  arity,
		Function: func(args []Value) (Value, error) {
			if len(args) == 0 {
				return NilValue(), fmt.Errorf("function '%s' expects %d argument(s), got 0", name, arity)
			}
			return BoxString(fn(ToString(args[0]))), nil
		},
	}
}

// Helper to create single-argument math functions
func createMathFunc(name string, arity int, fn func(float64) float64) *NativeFnObj {
	return &NativeFnObj{
		Object: Object{Type: OBJ_NATIVE_FN},
		Name:   name,
		Arity:  arity,
		Function: func(args []Value) (Value, error) {
			return BoxNumber(fn(ToNumber(args[0]))), nil
		},
	}
}
