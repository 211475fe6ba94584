package runtime

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"cellang/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindBool
	KindString
	KindPointer
	KindFunction
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindPointer:
		return "pointer"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. The set of
// implementations is closed: IntegerValue, BoolValue, StringValue,
// PointerValue, *FunctionValue and NativeFunctionValue.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntegerValue struct {
	Val *big.Int
}

func (v IntegerValue) Kind() Kind { return KindInteger }

// NewInteger wraps an int64.
func NewInteger(n int64) IntegerValue {
	return IntegerValue{Val: big.NewInt(n)}
}

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Pointers
//-----------------------------------------------------------------------------

// CellRef addresses one binding: a frame handle plus the bound name. The
// frame is fixed when the reference is taken, so a CellRef keeps naming the
// same binding wherever it is later read or written, independent of the
// scope in effect there.
type CellRef struct {
	Frame *Frame
	Name  string
}

// Load reads the referenced binding.
func (r CellRef) Load() (Value, error) {
	if r.Frame == nil {
		return nil, fmt.Errorf("%w: dangling reference to '%s'", ErrUnboundName, r.Name)
	}
	val, ok := r.Frame.Lookup(r.Name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnboundName, r.Name)
	}
	return val, nil
}

// Store overwrites the referenced binding. Global bindings are never
// writable, matching Environment.Assign.
func (r CellRef) Store(value Value) error {
	if r.Frame == nil || r.Frame.IsGlobal() {
		return fmt.Errorf("%w: '%s' is not assignable", ErrUnboundName, r.Name)
	}
	if !r.Frame.Set(r.Name, value) {
		return fmt.Errorf("%w: '%s'", ErrUnboundName, r.Name)
	}
	return nil
}

// PointerValue is a first-class reference to a cell. Target is resolved
// once, against the scope live at &cell; dereference reads and writes go
// through it and never consult the dereferencing site's scope.
type PointerValue struct {
	Target CellRef
}

func (v PointerValue) Kind() Kind { return KindPointer }

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// FunctionValue is a user-defined function. Functions are not closures:
// the only scope they capture is the global frame.
type FunctionValue struct {
	Name        string
	Params      []string
	Body        *ast.Block
	Declaration *ast.FunctionExpression
	Globals     *Frame
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// NativeCallContext provides hooks for native functions.
type NativeCallContext struct {
	Env    *Environment
	Output io.Writer
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeFunctionValue is a host-implemented callable. Arity < 0 accepts
// any number of arguments.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

//-----------------------------------------------------------------------------
// Utility helpers
//-----------------------------------------------------------------------------

// CloneBigInt copies the provided big.Int pointer, tolerating nil.
func CloneBigInt(src *big.Int) *big.Int {
	if src == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(src)
}

// FormatValue renders a value for diagnostics and host output.
func FormatValue(val Value) string {
	switch v := val.(type) {
	case nil:
		return "<nil>"
	case IntegerValue:
		if v.Val == nil {
			return "0"
		}
		return v.Val.String()
	case BoolValue:
		if v.Val {
			return "TRUE"
		}
		return "FALSE"
	case StringValue:
		return strconv.Quote(v.Val)
	case PointerValue:
		return fmt.Sprintf("<POINTER TO %s>", v.Target.Name)
	case *FunctionValue:
		var b strings.Builder
		b.WriteString("FUNCTION ")
		b.WriteString(v.Name)
		b.WriteByte('[')
		b.WriteString(strings.Join(v.Params, ", "))
		b.WriteByte(']')
		return b.String()
	case NativeFunctionValue:
		return fmt.Sprintf("<BUILTIN %s>", v.Name)
	default:
		return fmt.Sprintf("[%s]", val.Kind())
	}
}
