package hir

import (
	"math"
	"math/bits"
	"strconv"
)

// intrinsicFolder constant-folds ICall nodes against the builtins the host
// registers on the register VM (internal/vmregister.RegisterStdlib):
// min/max/sqrt/sin/cos/tan/abs/ceil/floor, shifts/rotates/bitwise ops over
// the 32-bit integer domain with an 8-bit shift count, and the int/real/
// string coercions — ported from fold-intrinsic.cc's IntrinsicFolder.
type intrinsicFolder struct{}

func (intrinsicFolder) Name() string { return "intrinsic" }

func (intrinsicFolder) CanFold(req FoldRequest) bool {
	return req.Tag == ReqExpr
}

func (f intrinsicFolder) Fold(g *Graph, req FoldRequest) ID {
	n := g.node(req.Node)
	if n.Kind != KindICall {
		return InvalidID
	}
	return f.foldICall(g, n)
}

func asReal(n *Node) (float64, bool) {
	if n.Kind == KindFloat64 {
		return n.AuxFloat, true
	}
	return 0, false
}

func asUint32(n *Node) (uint32, bool) {
	if n.Kind == KindFloat64 {
		return uint32(int64(n.AuxFloat)), true
	}
	return 0, false
}

func asUint8(n *Node) (uint8, bool) {
	if n.Kind == KindFloat64 {
		return uint8(int64(n.AuxFloat)), true
	}
	return 0, false
}

func (f intrinsicFolder) foldICall(g *Graph, n *Node) ID {
	operand := func(i int) *Node {
		if i >= len(n.Args) {
			return nil
		}
		return g.node(n.Args[i])
	}

	switch n.AuxString {
	case "max":
		if a1, ok1 := asReal(operand(0)); ok1 {
			if a2, ok2 := asReal(operand(1)); ok2 {
				return g.Float64(math.Max(a1, a2))
			}
		}
	case "min":
		if a1, ok1 := asReal(operand(0)); ok1 {
			if a2, ok2 := asReal(operand(1)); ok2 {
				return g.Float64(math.Min(a1, a2))
			}
		}
	case "sqrt":
		if a1, ok := asReal(operand(0)); ok {
			return g.Float64(math.Sqrt(a1))
		}
	case "sin":
		if a1, ok := asReal(operand(0)); ok {
			return g.Float64(math.Sin(a1))
		}
	case "cos":
		if a1, ok := asReal(operand(0)); ok {
			return g.Float64(math.Cos(a1))
		}
	case "tan":
		if a1, ok := asReal(operand(0)); ok {
			return g.Float64(math.Tan(a1))
		}
	case "abs":
		if a1, ok := asReal(operand(0)); ok {
			return g.Float64(math.Abs(a1))
		}
	case "ceil":
		if a1, ok := asReal(operand(0)); ok {
			return g.Float64(math.Ceil(a1))
		}
	case "floor":
		if a1, ok := asReal(operand(0)); ok {
			return g.Float64(math.Floor(a1))
		}
	case "lshift":
		if a1, ok1 := asUint32(operand(0)); ok1 {
			if a2, ok2 := asUint8(operand(1)); ok2 {
				return g.Float64(float64(a1 << a2))
			}
		}
	case "rshift":
		if a1, ok1 := asUint32(operand(0)); ok1 {
			if a2, ok2 := asUint8(operand(1)); ok2 {
				return g.Float64(float64(a1 >> a2))
			}
		}
	case "lrot":
		if a1, ok1 := asUint32(operand(0)); ok1 {
			if a2, ok2 := asUint8(operand(1)); ok2 {
				return g.Float64(float64(bits.RotateLeft32(a1, int(a2))))
			}
		}
	case "rrot":
		if a1, ok1 := asUint32(operand(0)); ok1 {
			if a2, ok2 := asUint8(operand(1)); ok2 {
				return g.Float64(float64(bits.RotateLeft32(a1, -int(a2))))
			}
		}
	case "band":
		if a1, ok1 := asUint32(operand(0)); ok1 {
			if a2, ok2 := asUint32(operand(1)); ok2 {
				return g.Float64(float64(a1 & a2))
			}
		}
	case "bor":
		if a1, ok1 := asUint32(operand(0)); ok1 {
			if a2, ok2 := asUint32(operand(1)); ok2 {
				return g.Float64(float64(a1 | a2))
			}
		}
	case "bxor":
		if a1, ok1 := asUint32(operand(0)); ok1 {
			if a2, ok2 := asUint32(operand(1)); ok2 {
				return g.Float64(float64(a1 ^ a2))
			}
		}
	case "int":
		return f.foldCoerce(g, operand(0), true)
	case "real":
		return f.foldCoerce(g, operand(0), false)
	case "string":
		return f.foldToString(g, operand(0))
	case "push":
		return f.foldPush(g, operand(0), n)
	case "pop":
		return f.foldPop(g, operand(0))
	}
	return InvalidID
}

func (f intrinsicFolder) foldCoerce(g *Graph, n1 *Node, truncate bool) ID {
	if n1 == nil {
		return InvalidID
	}
	switch n1.Kind {
	case KindFloat64:
		if truncate {
			return g.Float64(float64(int32(n1.AuxFloat)))
		}
		return g.Float64(n1.AuxFloat)
	case KindSmallString, KindLongString:
		if v, err := strconv.ParseFloat(n1.AuxString, 64); err == nil {
			if truncate {
				return g.Float64(float64(int32(v)))
			}
			return g.Float64(v)
		}
	case KindBoolean:
		if n1.AuxBool {
			return g.Float64(1.0)
		}
		return g.Float64(0.0)
	}
	return InvalidID
}

func (f intrinsicFolder) foldToString(g *Graph, n1 *Node) ID {
	if n1 == nil {
		return InvalidID
	}
	switch n1.Kind {
	case KindFloat64:
		return g.LongString(strconv.FormatFloat(n1.AuxFloat, 'g', -1, 64))
	case KindLongString, KindSmallString:
		return g.SmallString(n1.AuxString)
	case KindBoolean:
		if n1.AuxBool {
			return g.SmallString("true")
		}
		return g.SmallString("false")
	}
	return InvalidID
}

// foldPush/foldPop clone a constant list literal and extend/truncate it,
// per spec §4.6 ("push/pop on constant list literals clone and
// extend/truncate").
func (f intrinsicFolder) foldPush(g *Graph, list *Node, call *Node) ID {
	if list == nil || list.Kind != KindIRList || len(call.Args) < 2 {
		return InvalidID
	}
	elems := append(append([]ID(nil), list.Args...), call.Args[1])
	return g.NewExpr(KindIRList, elems...)
}

func (f intrinsicFolder) foldPop(g *Graph, list *Node) ID {
	if list == nil || list.Kind != KindIRList || len(list.Args) == 0 {
		return InvalidID
	}
	elems := append([]ID(nil), list.Args[:len(list.Args)-1]...)
	return g.NewExpr(KindIRList, elems...)
}
