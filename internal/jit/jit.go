// Package jit is the thin adapter between the host interpreter's register
// bytecode and the optimizing sea-of-nodes pipeline in internal/hir: it
// owns call-count profiling, tiering decisions, and the compile-job
// boundary, and hands bytecode + constants to hir.BuildGraph one function
// at a time. internal/hir has no inbound dependency on this package or on
// the interpreter — the dependency runs one way, jit -> hir, so the
// interpreter (internal/vmregister) can import jit without either side
// importing the other back.
package jit

import (
	"fmt"
	"reflect"
	"unsafe"

	"sentra/internal/hir"
)

// Trace is an optional low-overhead diagnostic hook, wired up from
// cmd/sentra's -jit-trace flag. Nil by default.
var Trace func(format string, args ...any)

// Config controls when a function graduates from the interpreter to a
// compiled tier. The zero Config is not usable; use DefaultConfig.
type Config struct {
	QuickJITThreshold  int
	OptimizedThreshold int
}

// DefaultConfig mirrors the thresholds the interpreter's inline profiler
// used before this package owned tiering.
func DefaultConfig() Config {
	return Config{QuickJITThreshold: 100, OptimizedThreshold: 1000}
}

// CompilationTier names how aggressively a function has been analyzed.
type CompilationTier int

const (
	TierInterpreted CompilationTier = iota
	TierQuickJIT
	TierOptimized
)

// Function is the host-independent view of a compiled function this
// package operates on: plain bytecode words and a decoded constant pool,
// not the interpreter's own object types (§10.1's BytecodeInfo contract).
type Function struct {
	Name      string
	Arity     int
	Code      []uint32
	Constants []interface{}
}

// Profiler counts calls per function and decides when to promote a
// function to a new compilation tier. One Profiler is shared by every
// function in a running VM.
type Profiler struct {
	cfg        Config
	callCounts map[*Function]int
	compiled   map[*Function]bool
}

func NewProfiler() *Profiler { return NewProfilerWithConfig(DefaultConfig()) }

func NewProfilerWithConfig(cfg Config) *Profiler {
	return &Profiler{
		cfg:        cfg,
		callCounts: make(map[*Function]int),
		compiled:   make(map[*Function]bool),
	}
}

// RecordCall registers one call to fn and reports whether this call just
// crossed a tiering threshold, and which tier (1 = quick, 2 = optimized).
// A function already promoted to the optimized tier is never re-reported.
func (p *Profiler) RecordCall(fn *Function) (bool, int) {
	if p.compiled[fn] {
		return false, 0
	}
	p.callCounts[fn]++
	switch p.callCounts[fn] {
	case p.cfg.OptimizedThreshold:
		p.compiled[fn] = true
		return true, 2
	case p.cfg.QuickJITThreshold:
		return true, 1
	}
	return false, 0
}

// CompiledFunction is the result of a compile job. OptimizedCode is the
// patched bytecode a caller should install in place of the function's
// interpreted code; producing native or re-optimized bytecode is outside
// this pipeline's scope (codegen is a Non-goal), so it is always empty.
// Graph holds the built-and-analyzed sea-of-nodes graph itself, the
// actual product of this pass, for tracing or for a future codegen
// backend to consume.
type CompiledFunction struct {
	OptimizedCode []uint32
	Graph         *hir.Graph
}

// Compiler drives one function's graph construction and analysis passes.
type Compiler struct {
	profiler *Profiler
}

func NewCompiler(p *Profiler) *Compiler { return &Compiler{profiler: p} }

// Compile builds fn's sea-of-nodes graph (folding happens inline as the
// builder drives each instruction through the folder chain) and then runs
// the two analyses that need the whole graph at once: dominators and
// loop-induction-variable typing. A panic anywhere in the pipeline is
// treated as a failed compile job, not a fatal error — the caller falls
// back to interpreting fn's original bytecode.
func (c *Compiler) Compile(fn *Function, tier CompilationTier) (result *CompiledFunction, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = &CompiledFunction{}
			err = fmt.Errorf("jit: compile %s: %v", fn.Name, r)
			if Trace != nil {
				Trace("jit: compile panic for %s: %v", fn.Name, r)
			}
		}
	}()

	consts := normalizeConstants(fn.Constants)
	graph := hir.BuildGraph(fn.Code, consts, fn.Arity)
	hir.BuildDominators(graph)
	hir.TypeLoopInductionVariables(graph)

	if Trace != nil {
		Trace("jit: compiled %s tier=%d nodes=%d", fn.Name, tier, graph.MaxID())
	}
	return &CompiledFunction{Graph: graph}, nil
}

// normalizeConstants adapts the interpreter's boxed constant values to the
// plain representation hir.BuildGraph understands (int64/float64/bool/
// string/nil). Most constants arrive already-unboxed; a string constant
// arrives as a pointer to the interpreter's own string object instead of
// a plain Go string, since this package cannot name that type without
// importing the interpreter back. reflect picks the exported Value field
// off of it as the one piece the builder needs; anything else passes
// through as an opaque value the builder treats conservatively.
func normalizeConstants(in []interface{}) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = normalizeConstant(v)
	}
	return out
}

func normalizeConstant(v interface{}) interface{} {
	switch v.(type) {
	case int64, int, float64, bool, string, nil:
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		if f := rv.FieldByName("Value"); f.IsValid() && f.Kind() == reflect.String {
			return f.String()
		}
	}
	return v
}

// --- legacy inline-hot-loop template matcher ---
//
// The interpreter's OP_JMP/OP_JMP_HOT self-patching fast path and its
// function-level pattern matcher predate this package's real HIR pipeline
// and are not grounded in it: they recognize a handful of bytecode shapes
// (a bare counting loop, a sum, a product, fib, factorial) by hand and
// splice in hardcoded native implementations, never consulting the graph
// built above. The interpreter still calls directly into this surface, so
// it stays, but it is kept permanently inert here — it always reports "no
// pattern" and the interpreter falls back to its normal loop, rather than
// racing a benchmark-shaped cheat against the real optimizer.

// TemplateType names a loop shape AnalyzeLoop recognizes.
type TemplateType int

const (
	TEMPLATE_UNKNOWN TemplateType = iota
	LOOP_SUM
	LOOP_COUNT_UP
	LOOP_PRODUCT
)

// IntLoopCode is the native-loop description AnalyzeLoop would hand back
// for a matched template. Kept inert: AnalyzeLoop never returns a non-nil
// one, so none of these fields are ever read.
type IntLoopCode struct {
	CounterReg   int
	LimitReg     int
	AccumReg     int
	LimitIsConst bool
	LimitConst   int64
	Template     TemplateType
}

// LoopAnalysis is the result AnalyzeLoop reports for one candidate loop.
type LoopAnalysis struct {
	MatchedTemplate TemplateType
	IntLoopCode     *IntLoopCode
	AccumGlobalIdx  int
	StartPC         int
	EndPC           int
	CounterReg      int
	LimitReg        int
	StepReg         int
	AccumReg        int
}

// Value is a raw NaN-boxed word from the interpreter, passed through
// opaquely — this package never unboxes it itself.
type Value uint64

// AnalyzeLoop always reports no match: the inline bytecode-patching hot
// path superseded here degrades gracefully to the interpreter loop
// whenever no template is matched, so "always unmatched" is a safe,
// correct default rather than a stub awaiting implementation.
func AnalyzeLoop(code []uint32, consts []Value, startPC, endPC int) *LoopAnalysis {
	return &LoopAnalysis{MatchedTemplate: TEMPLATE_UNKNOWN, AccumGlobalIdx: -1, StartPC: startPC, EndPC: endPC}
}

// ExecuteJITUnsafe would execute a natively-compiled loop directly against
// the interpreter's global slots. Always declines, for the same reason
// AnalyzeLoop never matches a template.
func ExecuteJITUnsafe(globals unsafe.Pointer, analysis *LoopAnalysis) bool {
	return false
}

// Instruction is a raw bytecode word, passed through opaquely to
// FunctionJIT.AnalyzeFunction.
type Instruction uint32

// PatternType names a whole-function bytecode shape FunctionJIT
// recognizes.
type PatternType int

const (
	PATTERN_NONE PatternType = iota
	PATTERN_FIB
	PATTERN_FACTORIAL
)

// FunctionJIT recognizes whole-function bytecode shapes. Kept inert for
// the same reason as AnalyzeLoop above.
type FunctionJIT struct{}

func NewFunctionJIT() *FunctionJIT { return &FunctionJIT{} }

func (f *FunctionJIT) AnalyzeFunction(code []Instruction, consts []Value, arity int) PatternType {
	return PATTERN_NONE
}
