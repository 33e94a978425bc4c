// Package hir implements the sea-of-nodes high-level IR that sits between
// the register-bytecode builder (internal/compregister, internal/vmregister)
// and the JIT tiering front door (internal/jit). It owns the node taxonomy,
// dominator and alias analyses, the effect-tracking bookkeeping used during
// construction, the folder chain, and the loop-induction typing pass.
package hir

import "fmt"

// Kind tags the three disjoint node families described by the node
// taxonomy: expressions, control-flow regions, and effect/barrier markers.
type Kind uint8

const (
	KindInvalid Kind = iota

	// --- Expr: constants ---
	KindFloat64
	KindInt64
	KindLongString
	KindSmallString
	KindBoolean
	KindNil

	// --- Expr: composites ---
	KindIRList
	KindIRObject
	KindClosure

	// --- Expr: polymorphic arithmetic/logic ---
	KindUnary
	KindBinary
	KindTernary

	// --- Expr: typed specializations ---
	KindFloat64Negate
	KindFloat64Arithmetic
	KindFloat64Compare
	KindFloat64Bitwise
	KindStringCompare
	KindSStringEq
	KindSStringNe
	KindInt64Arithmetic
	KindInt64Compare
	KindInt64ToFloat64
	KindFloat64ToInt64

	// --- Expr: memory operations ---
	KindObjectGet
	KindObjectSet
	KindListGet
	KindListSet
	KindObjectFind
	KindListIndex
	KindObjectRefGet
	KindObjectRefSet
	KindListRefGet
	KindListRefSet
	KindExtensionGet
	KindExtensionSet

	// --- Expr: iterators ---
	KindItrNew
	KindItrNext
	KindItrTest
	KindItrDeref

	// --- Expr: calls ---
	KindCall
	KindICall

	// --- Expr: guards and predicates ---
	KindTestType
	KindListOOBTest
	KindTypeGuard

	// --- Expr: box/unbox ---
	KindBox
	KindUnbox

	// --- Expr: control-dependent ---
	KindPhi
	KindLoopIVInt64
	KindLoopIVFloat64
	KindProjection
	KindAlias
	KindCheckpoint
	KindStackSlot

	// --- Expr: upvalue/argument ---
	KindUGet
	KindUSet
	KindArg
	KindOSRLoadStack
	KindOSRLoadUpvalue
	KindOSRLoadGlobal
	KindGlobalGet
	KindGlobalSet

	// --- ControlFlow ---
	KindStart
	KindEnd
	KindRegion
	KindIf
	KindIfTrue
	KindIfFalse
	KindJump
	KindLoopHeader
	KindLoop
	KindLoopExit
	KindReturn
	KindSuccess
	KindFail
	KindTrap
	KindOSRStart
	KindOSREnd

	// --- Effect marker ---
	KindEffectBarrierHard
	KindEffectBarrierSoft
	KindBranchStartEffect
	KindWriteEffect
	KindReadEffect
	KindEffectPhi
	KindListResize
	KindObjectResize
	KindEmptyBarrier
)

// Family classifies a Kind into one of the three disjoint node families.
type Family uint8

const (
	FamilyExpr Family = iota
	FamilyControlFlow
	FamilyEffect
)

func (k Kind) Family() Family {
	switch {
	case k >= KindStart && k <= KindOSREnd:
		return FamilyControlFlow
	case k >= KindEffectBarrierHard && k <= KindEmptyBarrier:
		return FamilyEffect
	default:
		return FamilyExpr
	}
}

// UnaryOp is the operator code carried by Unary nodes (and specialized
// negate/not forms that track the same tag for folding purposes).
type UnaryOp uint8

const (
	UnaryMinus UnaryOp = iota
	UnaryNot
)

// BinaryOp is the operator code carried by Binary and the typed arithmetic
// specializations.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinPow
	BinEQ
	BinNE
	BinLT
	BinLE
	BinGT
	BinGE
	BinAnd
	BinOr
	BinConcat
)

func (op BinaryOp) IsComparison() bool {
	switch op {
	case BinEQ, BinNE, BinLT, BinLE, BinGT, BinGE:
		return true
	}
	return false
}

func (op BinaryOp) IsArithmetic() bool {
	switch op {
	case BinAdd, BinSub, BinMul, BinDiv, BinMod, BinPow:
		return true
	}
	return false
}

// TypeKind enumerates the closed set of dynamic type kinds TestType can
// discriminate, matching the arithmetic folder's type(x)=="name" pattern.
type TypeKind uint8

const (
	TypeReal TypeKind = iota
	TypeBoolean
	TypeNull
	TypeList
	TypeObject
	TypeClosure
	TypeIterator
	TypeExtension

	// TypeUnboxedInt64 and TypeUnboxedFloat64 are representation tags used
	// only by Box/Unbox's TypeKind field to say which raw machine
	// representation is being boxed/unboxed (loop-induction specialization
	// needs this distinction even though both widths report as TypeReal to
	// TestType/type(x) at the dynamic-type level).
	TypeUnboxedInt64
	TypeUnboxedFloat64
)

var typeKindNames = map[string]TypeKind{
	"real":      TypeReal,
	"boolean":   TypeBoolean,
	"null":      TypeNull,
	"list":      TypeList,
	"object":    TypeObject,
	"closure":   TypeClosure,
	"iterator":  TypeIterator,
	"extension": TypeExtension,
}

// LookupTypeKind resolves the string argument of a `type(x) == "..."`
// pattern to its TypeKind, reporting whether the name is one of the
// closed set the arithmetic folder recognizes.
func LookupTypeKind(name string) (TypeKind, bool) {
	k, ok := typeKindNames[name]
	return k, ok
}

// RefKind distinguishes the two field-reference families the memory
// folder numbers and aliases: list slots and object slots.
type RefKind uint8

const (
	RefList RefKind = iota
	RefObject
)

// ID is a dense, monotonically increasing node identifier, used instead of
// pointers so that replacement is a bulk id remap rather than pointer
// surgery in a cyclic graph (phi -> region -> phi).
type ID int32

const InvalidID ID = -1

// Ref records one use of a node: the user's id and the operand slot it
// occupies, so replacement can rewrite exactly that slot.
type Ref struct {
	User ID
	Slot int
}

// Node is a single tagged-union value covering all three node families.
// Kind-specific payload is carried in the fields below rather than through
// an interface hierarchy, matching how a dense compiler IR is built in Go
// (see the corpus's SSA-shaped files): one struct, a Kind discriminant, and
// auxiliary fields that are only meaningful for certain kinds.
type Node struct {
	ID   ID
	Kind Kind

	// Operands: values/effects/regions this node consumes. Append-only
	// during construction; rewritable only via Graph.Replace.
	Args []ID

	// Refs: every (user, slot) pair pointing at this node. Maintained
	// incrementally as operand edges are installed.
	Refs []Ref

	// Effect is the effect edge this node observes, if it has one
	// (InvalidID otherwise). Transferred wholesale on Replace.
	Effect ID

	// Region is the control-flow region this node is attached to, for
	// control-dependent expr kinds (Phi, Checkpoint, StackSlot, Arg, ...).
	Region ID

	// --- auxiliary payload, meaningful only for specific Kinds ---
	UnaryOp  UnaryOp
	BinaryOp BinaryOp
	TypeKind TypeKind
	RefKind  RefKind

	AuxInt    int64
	AuxFloat  float64
	AuxString string
	AuxBool   bool

	// Name is used for diagnostics (printer labels) only.
	Name string

	dead bool // true once replaced; kept in the arena, unreachable from uses
}

// IsExpr, IsControlFlow and IsEffect classify a node by its Kind's family.
func (n *Node) IsExpr() bool        { return n.Kind.Family() == FamilyExpr }
func (n *Node) IsControlFlow() bool { return n.Kind.Family() == FamilyControlFlow }
func (n *Node) IsEffect() bool      { return n.Kind.Family() == FamilyEffect }

// IsConstant reports whether n is a literal expression folders can fold
// arithmetic/logic/pattern-match rules against.
func (n *Node) IsConstant() bool {
	switch n.Kind {
	case KindFloat64, KindInt64, KindLongString, KindSmallString, KindBoolean, KindNil:
		return true
	}
	return false
}

// IsNumericConstant reports whether n is a float64 or int64 literal.
func (n *Node) IsNumericConstant() bool {
	return n.Kind == KindFloat64 || n.Kind == KindInt64
}

// IsBoxNode / IsUnboxNode mirror the original source's accessors used by
// the box/unbox folder and the cast folder.
func (n *Node) IsBoxNode() bool   { return n.Kind == KindBox }
func (n *Node) IsUnboxNode() bool { return n.Kind == KindUnbox }

// IsEffectful reports whether n carries a write/read/barrier effect of its
// own (as opposed to merely observing one via Effect).
func (n *Node) IsEffectful() bool {
	switch n.Kind {
	case KindObjectSet, KindListSet, KindObjectRefSet, KindListRefSet,
		KindExtensionSet, KindCall, KindICall, KindGlobalGet, KindGlobalSet:
		return true
	}
	return n.IsEffect()
}

func (n *Node) String() string {
	return fmt.Sprintf("%s_%d", kindNames[n.Kind], n.ID)
}

var kindNames = map[Kind]string{
	KindInvalid:            "Invalid",
	KindFloat64:            "Float64",
	KindInt64:              "Int64",
	KindLongString:         "LongString",
	KindSmallString:        "SmallString",
	KindBoolean:            "Boolean",
	KindNil:                "Nil",
	KindIRList:             "IRList",
	KindIRObject:           "IRObject",
	KindClosure:            "Closure",
	KindUnary:              "Unary",
	KindBinary:             "Binary",
	KindTernary:            "Ternary",
	KindFloat64Negate:      "Float64Negate",
	KindFloat64Arithmetic:  "Float64Arithmetic",
	KindFloat64Compare:     "Float64Compare",
	KindFloat64Bitwise:     "Float64Bitwise",
	KindStringCompare:      "StringCompare",
	KindSStringEq:          "SStringEq",
	KindSStringNe:          "SStringNe",
	KindInt64Arithmetic:    "Int64Arithmetic",
	KindInt64Compare:       "Int64Compare",
	KindInt64ToFloat64:     "Int64ToFloat64",
	KindFloat64ToInt64:     "Float64ToInt64",
	KindObjectGet:          "ObjectGet",
	KindObjectSet:          "ObjectSet",
	KindListGet:            "ListGet",
	KindListSet:            "ListSet",
	KindObjectFind:         "ObjectFind",
	KindListIndex:          "ListIndex",
	KindObjectRefGet:       "ObjectRefGet",
	KindObjectRefSet:       "ObjectRefSet",
	KindListRefGet:         "ListRefGet",
	KindListRefSet:         "ListRefSet",
	KindExtensionGet:       "ExtensionGet",
	KindExtensionSet:       "ExtensionSet",
	KindItrNew:             "ItrNew",
	KindItrNext:            "ItrNext",
	KindItrTest:            "ItrTest",
	KindItrDeref:           "ItrDeref",
	KindCall:               "Call",
	KindICall:              "ICall",
	KindTestType:           "TestType",
	KindListOOBTest:        "ListOOBTest",
	KindTypeGuard:          "TypeGuard",
	KindBox:                "Box",
	KindUnbox:              "Unbox",
	KindPhi:                "Phi",
	KindLoopIVInt64:        "LoopIVInt64",
	KindLoopIVFloat64:      "LoopIVFloat64",
	KindProjection:         "Projection",
	KindAlias:              "Alias",
	KindCheckpoint:         "Checkpoint",
	KindStackSlot:          "StackSlot",
	KindUGet:               "UGet",
	KindUSet:               "USet",
	KindArg:                "Arg",
	KindOSRLoadStack:       "OSRLoadStack",
	KindOSRLoadUpvalue:     "OSRLoadUpvalue",
	KindOSRLoadGlobal:      "OSRLoadGlobal",
	KindGlobalGet:          "GlobalGet",
	KindGlobalSet:          "GlobalSet",
	KindStart:              "Start",
	KindEnd:                "End",
	KindRegion:             "Region",
	KindIf:                 "If",
	KindIfTrue:             "IfTrue",
	KindIfFalse:            "IfFalse",
	KindJump:               "Jump",
	KindLoopHeader:         "LoopHeader",
	KindLoop:               "Loop",
	KindLoopExit:           "LoopExit",
	KindReturn:             "Return",
	KindSuccess:            "Success",
	KindFail:               "Fail",
	KindTrap:               "Trap",
	KindOSRStart:           "OSRStart",
	KindOSREnd:             "OSREnd",
	KindEffectBarrierHard:  "EffectBarrierHard",
	KindEffectBarrierSoft:  "EffectBarrierSoft",
	KindBranchStartEffect:  "BranchStartEffect",
	KindWriteEffect:        "WriteEffect",
	KindReadEffect:         "ReadEffect",
	KindEffectPhi:          "EffectPhi",
	KindListResize:         "ListResize",
	KindObjectResize:       "ObjectResize",
	KindEmptyBarrier:       "EmptyBarrier",
}

// gvnHash computes the GVN hash for pure nodes: a combinator over the
// operator tag and operand hashes (ported from the original's GVNHash3
// combination, per SPEC_FULL §12.2). Effectful nodes hash by identity.
func (n *Node) gvnHash(g *Graph) uint64 {
	if !n.isPureForGVN() {
		return uint64(n.ID) * 0x9E3779B97F4A7C15
	}
	h := gvnCombine(uint64(n.Kind), uint64(n.UnaryOp), uint64(n.BinaryOp))
	h = gvnCombine(h, uint64(n.TypeKind), uint64(n.AuxInt))
	h = gvnCombine(h, floatBits(n.AuxFloat), stringHash(n.AuxString))
	h = gvnCombine(h, auxBoolBit(n.AuxBool), 0)
	for _, a := range n.Args {
		h = gvnCombine(h, g.node(a).gvnHash(g), 0)
	}
	return h
}

// isPureForGVN reports whether n is a pure expression (no side effects),
// eligible for structural hashing/comparison instead of identity.
func (n *Node) isPureForGVN() bool {
	if !n.IsExpr() {
		return false
	}
	if n.IsEffectful() {
		return false
	}
	switch n.Kind {
	case KindCall, KindICall, KindItrNew, KindItrNext:
		return false
	}
	return true
}

// gvnEqual reports structural equality for two pure nodes: same kind, same
// auxiliary tag, and operand-by-operand equality (recursively structural
// for pure operands, identity for effectful ones).
func gvnEqual(g *Graph, a, b *Node) bool {
	if a == b {
		return true
	}
	if !a.isPureForGVN() || !b.isPureForGVN() {
		return a == b
	}
	if a.Kind != b.Kind || a.UnaryOp != b.UnaryOp || a.BinaryOp != b.BinaryOp ||
		a.TypeKind != b.TypeKind || a.AuxInt != b.AuxInt || a.AuxFloat != b.AuxFloat ||
		a.AuxString != b.AuxString || a.AuxBool != b.AuxBool || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !gvnEqual(g, g.node(a.Args[i]), g.node(b.Args[i])) {
			return false
		}
	}
	return true
}

func gvnCombine(a, b, c uint64) uint64 {
	h := a
	h ^= b + 0x9E3779B97F4A7C15 + (h << 6) + (h >> 2)
	h ^= c + 0x9E3779B97F4A7C15 + (h << 6) + (h >> 2)
	return h
}

func floatBits(f float64) uint64 {
	return uint64(int64(f*1e9)) // stable enough for GVN purposes; exactness is not required
}

func auxBoolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func stringHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
