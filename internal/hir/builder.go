package hir

// regState is the builder's per-path register file: register number to the
// HIR value currently held there. It is cloned at every control-flow split
// so each branch can evolve its own view, then reconciled back into phis at
// the join.
type regState map[uint8]ID

func cloneRegs(r regState) regState {
	out := make(regState, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// builder walks one function's register bytecode and emits the
// corresponding sea-of-nodes graph, one instruction at a time, driving
// every candidate expression through the folder chain and the effect
// bookkeeping as it goes (§3, §4.5, §4.6).
type builder struct {
	g           *Graph
	code        []Instruction
	consts      []interface{}
	jumpTargets map[int]bool
	effect      *EffectState
}

// BuildGraph constructs a Graph from one compiled function's bytecode. The
// inbound contract is bytecode words plus a decoded constant pool — plain
// values, not the host's own object types — so this package never imports
// the interpreter package that owns the bytecode format; internal/jit
// drives this one instruction at a time as the adapter between the two
// (§10.1). The builder only gives dedicated treatment to the opcode set
// the real compiler actually emits; anything else falls back to a
// conservative generic op that reads and barriers its operand registers
// without claiming to know their meaning.
func BuildGraph(code []uint32, constants []interface{}, arity int) *Graph {
	g := NewGraph()
	b := &builder{
		g:           g,
		code:        DecodeProgram(code),
		consts:      constants,
		jumpTargets: make(map[int]bool),
		effect:      NewEffectState(),
	}

	for pc, instr := range b.code {
		if instr.OpCode() == opJMP {
			b.jumpTargets[jumpTarget(pc, instr)] = true
		}
	}

	entry := g.Start()
	regs := regState{}
	for i := 0; i < arity; i++ {
		arg := g.newNode(KindArg)
		g.node(arg).Region = entry
		g.node(arg).AuxInt = int64(i)
		regs[uint8(i)] = arg
	}

	exit, _, term := b.buildRange(0, len(b.code), entry, regs)
	if term != -2 {
		ret := g.newNode(KindReturn)
		g.addArg(ret, exit)
		g.addArg(g.End(), ret)
	}
	if Trace != nil {
		Trace("built graph: %d nodes, %d instructions", g.MaxID(), len(code))
	}
	return g
}

// jumpTarget resolves the absolute pc a JMP/TEST-jump/ITERNEXT sBx operand
// lands on, mirroring patchJumpAt's offset arithmetic in the compiler
// (offset := len(code) - pc - 1, so target = pc + 1 + sBx).
func jumpTarget(pc int, instr Instruction) int {
	return pc + 1 + int(instr.SBx())
}

// reg reads a register's current value, defaulting to Nil for a register
// never written on this path (register id 0 is a legitimate node id in the
// arena, so a plain map lookup without the ok check would silently read
// the Start node instead of failing loudly or defaulting sanely).
func (b *builder) reg(regs regState, r uint8) ID {
	if v, ok := regs[r]; ok {
		return v
	}
	return b.g.Nil()
}

func (b *builder) constNode(idx uint16) ID {
	g := b.g
	if int(idx) >= len(b.consts) {
		return g.Nil()
	}
	switch v := b.consts[idx].(type) {
	case int64:
		return g.Int64(v)
	case int:
		return g.Int64(int64(v))
	case float64:
		return g.Float64(v)
	case bool:
		return g.Boolean(v)
	case string:
		return g.LongString(v)
	case nil:
		return g.Nil()
	default:
		// an opaque host value (e.g. a function template) this pass has
		// no further model for; treated as an uninspectable closure.
		clo := g.NewExpr(KindClosure)
		return clo
	}
}

func (b *builder) unary(operand ID, op UnaryOp) ID {
	g := b.g
	if folded := Drive(g, FoldRequest{Tag: ReqUnary, Op: op, Operand: operand}); folded != InvalidID {
		return folded
	}
	n := g.NewExpr(KindUnary, operand)
	g.node(n).UnaryOp = op
	return n
}

func (b *builder) binary(lhs, rhs ID, op BinaryOp) ID {
	g := b.g
	if folded := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: op, Lhs: lhs, Rhs: rhs}); folded != InvalidID {
		return folded
	}
	n := g.NewExpr(KindBinary, lhs, rhs)
	g.node(n).BinaryOp = op
	return n
}

// evalCond computes a TEST instruction's branch-into-the-following-code
// condition: TEST R(A) C skips the JMP that follows (falls into the
// instruction right after it) exactly when bool(R(A)) != C, so the
// "fall through" sense is R(A) itself when C is 0, and its negation when
// C is 1 (used by the && / || short-circuit encodings, which reuse TEST
// with C=1 instead of emitting a NOT).
func (b *builder) evalCond(regs regState, instr Instruction) ID {
	v := b.reg(regs, instr.A())
	if instr.C() != 0 {
		return b.unary(v, UnaryNot)
	}
	return v
}

// sideEffect builds a conservative effectful node: it may read anything and
// may write anything, used for PRINT/THROW/GETERROR/CALL and the generic
// opcode fallback, none of which the memory folder has any finer-grained
// model for.
func (b *builder) sideEffect(name string, region ID, operands ...ID) ID {
	g := b.g
	n := g.NewExpr(KindICall, operands...)
	g.node(n).AuxString = name
	b.effect.AddRead(g, n, RefObject, false)
	barrier := g.NewEffect(KindEffectBarrierHard, region, n)
	b.effect.AddWrite(g, barrier, RefObject, false)
	return n
}

// memRead implements one GETTABLE/GETTABLEK's load: number the field
// reference (deduping through the memory folder's table), then try
// store-forwarding before falling back to a real RefGet node (§4.6).
func (b *builder) memRead(object, key ID, kind RefKind) ID {
	g := b.g
	effect := b.effect.group(kind, true).currentWrite

	findTag, getTag := ReqListIndex, ReqListRefGet
	if kind == RefObject {
		findTag, getTag = ReqObjectFind, ReqObjectRefGet
	}

	ref := Drive(g, FoldRequest{Tag: findTag, Object: object, Key: key, Effect: effect})
	if ref == InvalidID {
		if kind == RefList {
			ref = g.NewExpr(KindListIndex, object, key)
		} else {
			ref = g.NewExpr(KindObjectFind, object, key)
		}
		g.node(ref).RefKind = kind
		(memoryFolder{}).RegisterRef(g, ref, object, key, kind, effect)
	}

	if v := Drive(g, FoldRequest{Tag: getTag, Ref: ref, Effect: effect}); v != InvalidID {
		return v
	}

	var get ID
	if kind == RefList {
		get = g.NewExpr(KindListRefGet, ref)
	} else {
		get = g.NewExpr(KindObjectRefGet, ref)
	}
	g.node(get).RefKind = kind
	b.effect.AddRead(g, get, kind, true)
	return get
}

// memWrite implements one SETTABLE/SETTABLEK's store: number the field
// reference, then try store-collapsing the write into an existing write or
// container literal before falling back to a real RefSet node (§4.6).
func (b *builder) memWrite(object, key, value ID, kind RefKind) {
	g := b.g
	effect := b.effect.group(kind, true).currentWrite

	findTag, setTag := ReqListIndex, ReqListRefSet
	if kind == RefObject {
		findTag, setTag = ReqObjectFind, ReqObjectRefSet
	}

	ref := Drive(g, FoldRequest{Tag: findTag, Object: object, Key: key, Effect: effect})
	if ref == InvalidID {
		if kind == RefList {
			ref = g.NewExpr(KindListIndex, object, key)
		} else {
			ref = g.NewExpr(KindObjectFind, object, key)
		}
		g.node(ref).RefKind = kind
		(memoryFolder{}).RegisterRef(g, ref, object, key, kind, effect)
	}

	if collapsed := Drive(g, FoldRequest{Tag: setTag, Ref: ref, Value: value, Effect: effect}); collapsed != InvalidID {
		grp := b.effect.group(kind, true)
		grp.currentWrite = collapsed
		b.effect.Root.currentWrite = collapsed
		return
	}

	var set ID
	if kind == RefList {
		set = g.NewExpr(KindListRefSet, ref, value)
	} else {
		set = g.NewExpr(KindObjectRefSet, ref, value)
	}
	g.node(set).RefKind = kind
	b.effect.AddWrite(g, set, kind, true)
}

// buildRange linearly scans [pc, end), building one node per instruction,
// until it either runs off the end of the range (term == -1, normal
// fallthrough), hits a RETURN (term == -2, after wiring it to End itself),
// or hits a bare unconditional JMP (term == the jump's resolved target).
// Nested if/loop constructs consume their own internal jumps through their
// own recursive calls, so a bare JMP observed here is always either a
// natural loop backedge or a break/continue — the caller decides which.
func (b *builder) buildRange(pc, end int, region ID, regs regState) (ID, regState, int) {
	g := b.g
	for pc < end {
		instr := b.code[pc]
		a, bb, c := instr.A(), instr.B(), instr.C()

		switch instr.OpCode() {
		case opTEST:
			jmp := b.code[pc+1]
			target := jumpTarget(pc+1, jmp)
			if b.jumpTargets[pc] {
				var term int
				region, regs, term = b.buildWhile(region, regs, instr, pc+2, target)
				if term == -2 {
					return region, regs, term
				}
				pc = target
				continue
			}
			cond := b.evalCond(regs, instr)
			var term int
			region, regs, term = b.buildIf(region, regs, cond, pc+2, target)
			if term == -2 {
				return region, regs, term
			}
			pc = target
			continue

		case opITERNEXT:
			target := jumpTarget(pc, instr)
			var term int
			region, regs, term = b.buildForIn(region, regs, a, pc+1, target)
			if term == -2 {
				return region, regs, term
			}
			pc = target
			continue

		case opJMP:
			return region, regs, jumpTarget(pc, instr)

		case opRETURN:
			count := 0
			if bb > 0 {
				count = int(bb) - 1
			}
			ret := g.newNode(KindReturn)
			g.addArg(ret, region)
			for i := 0; i < count; i++ {
				g.addArg(ret, b.reg(regs, a+uint8(i)))
			}
			g.addArg(g.End(), ret)
			return region, regs, -2

		case opLOADK:
			regs[a] = b.constNode(instr.Bx())
		case opLOADBOOL:
			regs[a] = g.Boolean(bb != 0)
		case opLOADNIL:
			for i := uint8(0); i <= bb; i++ {
				regs[a+i] = g.Nil()
			}
		case opMOVE:
			regs[a] = b.reg(regs, bb)

		case opADD:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinAdd)
		case opSUB:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinSub)
		case opMUL:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinMul)
		case opDIV:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinDiv)
		case opMOD:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinMod)
		case opEQ:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinEQ)
		case opNEQ:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinNE)
		case opLT:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinLT)
		case opLE:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinLE)
		case opGT:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinGT)
		case opGE:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinGE)
		case opCONCAT:
			regs[a] = b.binary(b.reg(regs, bb), b.reg(regs, c), BinConcat)
		case opUNM:
			regs[a] = b.unary(b.reg(regs, bb), UnaryMinus)
		case opNOT:
			regs[a] = b.unary(b.reg(regs, bb), UnaryNot)

		case opTYPEOF, opTYPEOF_FAST:
			// Labeled "type" (not the opcode's own name) so a following
			// EQ against a string constant reaches arithFolder's
			// matchTestType pattern, e.g. TYPEOF r1,r0; EQ r2,r1,k"list".
			regs[a] = b.sideEffect("type", region, b.reg(regs, bb))

		case opNEWARRAY:
			lit := g.NewExpr(KindIRList)
			regs[a] = lit
			b.effect.AddWrite(g, lit, RefList, true)
		case opNEWTABLE:
			lit := g.NewExpr(KindIRObject)
			regs[a] = lit
			b.effect.AddWrite(g, lit, RefObject, true)
		case opAPPEND:
			resize := g.NewEffect(KindListResize, region, b.reg(regs, a), b.reg(regs, bb))
			b.effect.AddWrite(g, resize, RefList, true)
		case opGETTABLE:
			regs[a] = b.memRead(b.reg(regs, bb), b.reg(regs, c), RefList)
		case opSETTABLE:
			b.memWrite(b.reg(regs, a), b.reg(regs, bb), b.reg(regs, c), RefList)
		case opGETTABLEK:
			regs[a] = b.memRead(b.reg(regs, bb), b.constNode(uint16(c)), RefObject)

		case opGETGLOBAL:
			get := g.NewExpr(KindGlobalGet, b.constNode(instr.Bx()))
			b.effect.AddRead(g, get, RefObject, false)
			regs[a] = get
		case opSETGLOBAL:
			set := g.NewExpr(KindGlobalSet, b.constNode(instr.Bx()), b.reg(regs, a))
			b.effect.AddWrite(g, set, RefObject, false)
		case opIMPORT:
			get := g.NewExpr(KindGlobalGet, b.constNode(instr.Bx()))
			b.effect.AddRead(g, get, RefObject, false)
			regs[a] = get
		case opEXPORT:
			set := g.NewExpr(KindGlobalSet, b.constNode(uint16(a)), b.reg(regs, bb))
			b.effect.AddWrite(g, set, RefObject, false)

		case opCLOSURE:
			regs[a] = b.constNode(instr.Bx())

		case opCALL:
			argCount := int(bb) - 1
			operands := []ID{b.reg(regs, a)}
			for i := 1; i <= argCount; i++ {
				operands = append(operands, b.reg(regs, a+uint8(i)))
			}
			call := b.sideEffect("call", region, operands...)
			resultCount := int(c) - 1
			if resultCount >= 1 {
				regs[a] = call
			}
			for i := 1; i < resultCount; i++ {
				regs[a+uint8(i)] = g.NewExpr(KindProjection, call)
			}

		case opPRINT:
			b.sideEffect("print", region, b.reg(regs, a))
		case opTHROW:
			b.sideEffect("throw", region, b.reg(regs, a))
		case opGETERROR:
			regs[a] = b.sideEffect("error", region)
		case opTRY, opENDTRY:
			barrier := g.NewEffect(KindEffectBarrierSoft, region)
			b.effect.AddWrite(g, barrier, RefObject, false)

		default:
			regs[a] = b.sideEffect(instr.OpCode().String(), region, b.reg(regs, a), b.reg(regs, bb), b.reg(regs, c))
		}
		pc++
	}
	return region, regs, -1
}

// mergeRegs reconciles two branches' register files at a join, building a
// 2-operand Phi (folded through the chain first, so e.g. identical
// incoming values or a ternary-shaped If collapse immediately) for every
// register either side holds. foldRegion is passed as the fold request's
// Region so phiFolder can look up an enclosing If's condition (fold-phi.cc
// reads it as an If node's Args[0], not the join region itself).
func (b *builder) mergeRegs(mergeCF, foldRegion ID, a, c regState) regState {
	g := b.g
	seen := make(map[uint8]bool, len(a)+len(c))
	for r := range a {
		seen[r] = true
	}
	for r := range c {
		seen[r] = true
	}
	out := make(regState, len(seen))
	for r := range seen {
		va, vc := b.reg(a, r), b.reg(c, r)
		if va == vc {
			out[r] = va
			continue
		}
		if folded := Drive(g, FoldRequest{Tag: ReqPhi, Lhs: va, Rhs: vc, Region: foldRegion}); folded != InvalidID {
			out[r] = folded
			continue
		}
		phi := g.newNode(KindPhi)
		g.node(phi).Region = mergeCF
		g.addArg(phi, va)
		g.addArg(phi, vc)
		out[r] = phi
	}
	return out
}

// buildIf builds one TEST+JMP if/else diamond. thenStart is the pc right
// after the JMP; elseTarget is the JMP's resolved target. The then-block is
// scanned bounded by elseTarget: if it runs off the end untouched (no
// trailing jump), there is no else block and both paths converge exactly
// at elseTarget; if it ends in a bare JMP, that jump's target bounds a
// nonempty else block and is where both paths actually converge.
func (b *builder) buildIf(region ID, regs regState, cond ID, thenStart, elseTarget int) (ID, regState, int) {
	g := b.g
	ifNode := g.newNode(KindIf)
	g.addArg(ifNode, cond)
	g.addArg(ifNode, region)

	thenHead := g.NewControlFlow(KindIfTrue, ifNode)
	thenExit, thenRegs, thenTerm := b.buildRange(thenStart, elseTarget, thenHead, cloneRegs(regs))

	elseHead := g.NewControlFlow(KindIfFalse, ifNode)

	if thenTerm == -2 {
		// then-branch returned; only the else path reaches the merge.
		return elseHead, regs, elseTarget
	}

	if thenTerm == -1 {
		// no else block: the jump-taken path lands on elseTarget directly.
		merge := g.NewControlFlow(KindRegion, thenExit, elseHead)
		return merge, b.mergeRegs(merge, ifNode, thenRegs, regs), elseTarget
	}

	elseExit, elseRegs, elseTerm := b.buildRange(elseTarget, thenTerm, elseHead, cloneRegs(regs))
	if elseTerm == -2 {
		return thenExit, thenRegs, thenTerm
	}
	merge := g.NewControlFlow(KindRegion, thenExit, elseExit)
	return merge, b.mergeRegs(merge, ifNode, thenRegs, elseRegs), thenTerm
}

// buildLoopCore builds one loop's header, its eager self-loop register
// phis, the condition (via condFn) and — when taken — the body (via
// bodyFn), then patches each phi's backedge operand with the body's exit
// value and folds away any phi the body left untouched (Phi(x,x) -> x, via
// the existing phi folder). Memory-effect merging across the backedge is
// approximated with a single Merge of the entry and post-body effect
// states rather than a full per-group phi-and-patch, since register
// values (not aliasing precision) are this pass's primary concern.
func (b *builder) buildLoopCore(
	region ID, regs regState,
	condFn func(headerRegs regState) ID,
	bodyFn func(bodyHead ID, bodyRegs regState) (ID, regState, int),
) (ID, regState, int) {
	g := b.g
	header := g.NewControlFlow(KindLoopHeader, region)

	phis := make(map[uint8]ID, len(regs))
	headerRegs := make(regState, len(regs))
	for r, v := range regs {
		phi := g.newNode(KindPhi)
		g.node(phi).Region = header
		g.addArg(phi, v)
		g.addArg(phi, v)
		phis[r] = phi
		headerRegs[r] = phi
	}

	entryEffect := b.effect
	b.effect = entryEffect.Clone()

	cond := condFn(headerRegs)

	ifNode := g.newNode(KindIf)
	g.addArg(ifNode, cond)
	g.addArg(ifNode, header)

	// exitHead/loopExit are wired as the If's first successor so a
	// reverse-post-order control-flow walk visits them only after the
	// whole body subtree (the If's second successor) closes out — the
	// loop forest builder pairs LoopHeader/LoopExit by that RPO order
	// and needs every body region to fall strictly between the two.
	exitHead := g.NewControlFlow(KindIfFalse, ifNode)
	loopExit := g.NewControlFlow(KindLoopExit, exitHead)

	bodyHead := g.NewControlFlow(KindIfTrue, ifNode)
	_, bodyRegs, term := bodyFn(bodyHead, cloneRegs(headerRegs))

	if term != -2 {
		for r, phi := range phis {
			g.patchArg(phi, 1, b.reg(bodyRegs, r))
			if folded := Drive(g, FoldRequest{Tag: ReqExpr, Node: phi}); folded != InvalidID {
				g.Replace(phi, folded)
				headerRegs[r] = folded
			}
		}
	}

	exitEffect := Merge(g, entryEffect, b.effect, header)
	b.effect = exitEffect

	normalizedTerm := -1
	if term == -2 {
		normalizedTerm = -2
	}
	return loopExit, headerRegs, normalizedTerm
}

func (b *builder) buildWhile(region ID, regs regState, testInstr Instruction, bodyStart, exitTarget int) (ID, regState, int) {
	return b.buildLoopCore(region, regs,
		func(headerRegs regState) ID { return b.evalCond(headerRegs, testInstr) },
		func(bodyHead ID, bodyRegs regState) (ID, regState, int) {
			return b.buildRange(bodyStart, exitTarget, bodyHead, bodyRegs)
		},
	)
}

// buildForIn builds one ITERINIT/ITERNEXT for-in loop. iterReg's own
// register already holds the ItrNew value built by ITERINIT before this is
// called; the loop-carried iterator value advances once per header
// evaluation via ItrNext, and the VM's "current value lives at iterReg+2"
// convention is modeled by stashing ItrDeref's result at that synthetic
// register number so the body's ordinary MOVE varReg, iterReg+2 resolves
// it like any other register read.
func (b *builder) buildForIn(region ID, regs regState, iterReg uint8, bodyStart, exitTarget int) (ID, regState, int) {
	g := b.g
	return b.buildLoopCore(region, regs,
		func(headerRegs regState) ID {
			next := g.NewExpr(KindItrNext, b.reg(headerRegs, iterReg))
			headerRegs[iterReg] = next
			headerRegs[iterReg+2] = g.NewExpr(KindItrDeref, next)
			return g.NewExpr(KindItrTest, next)
		},
		func(bodyHead ID, bodyRegs regState) (ID, regState, int) {
			return b.buildRange(bodyStart, exitTarget, bodyHead, bodyRegs)
		},
	)
}
