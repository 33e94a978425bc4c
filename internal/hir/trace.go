package hir

// Trace is an optional low-overhead diagnostic hook: nil by default (the
// nil check on every call site costs nothing when tracing is off), set by
// internal/jit when -jit-trace is enabled so graph construction and the
// fold chain can log without either package depending on a particular
// logging library.
var Trace func(format string, args ...any)
