package hir

// Instruction mirrors the host's register-bytecode encoding
// (internal/vmregister/bytecode.go's iABC/iABx/iAsBx/iAx formats) without
// importing that package: internal/jit sits on the other side of an
// import-cycle boundary (vmregister already imports jit), so the adapter
// crosses it by value — a bytecode word is just a uint32, trivially
// convertible in both directions without either package naming the
// other's types (§10.1's "thin adapter... small BytecodeInfo-carrying
// construction API").
type Instruction uint32

const (
	posA      = 8
	posB      = 16
	posC      = 24
	maskBx    = (1 << 16) - 1
	maxArgSBx = maskBx >> 1
)

func (i Instruction) OpCode() rawOp { return rawOp(uint32(i) & 0xFF) }
func (i Instruction) A() uint8      { return uint8(uint32(i) >> posA) }
func (i Instruction) B() uint8      { return uint8(uint32(i) >> posB) }
func (i Instruction) C() uint8      { return uint8(uint32(i) >> posC) }
func (i Instruction) Bx() uint16    { return uint16(uint32(i) >> posB) }
func (i Instruction) SBx() int32    { return int32(i.Bx()) - maxArgSBx }

// encodeABC/encodeABx/encodeAsBx mirror the host compiler's instruction
// encoders (CreateABC/CreateABx/CreateAsBx) bit for bit; used by tests to
// build instruction words without depending on vmregister.
func encodeABC(op rawOp, a, b, c uint8) uint32 {
	return uint32(op) | uint32(a)<<posA | uint32(b)<<posB | uint32(c)<<posC
}

func encodeABx(op rawOp, a uint8, bx uint16) uint32 {
	return uint32(op) | uint32(a)<<posA | uint32(bx)<<posB
}

func encodeAsBx(op rawOp, a uint8, sbx int32) uint32 {
	return encodeABx(op, a, uint16(sbx+maxArgSBx))
}

// rawOp enumerates the host opcode set in the exact declaration order of
// vmregister.OpCode, so the numeric value extracted from a bytecode word
// lines up with the semantic opcode it was encoded with on the other side
// of the adapter, without the two packages sharing a named type.
type rawOp uint8

const (
	opADD rawOp = iota
	opSUB
	opMUL
	opDIV
	opMOD
	opPOW
	opUNM
	opADDK
	opSUBK
	opMULK
	opDIVK
	opEQ
	opLT
	opLE
	opNEQ
	opGT
	opGE
	opNOT
	opAND
	opOR
	opMOVE
	opLOADK
	opLOADBOOL
	opLOADNIL
	opGETGLOBAL
	opSETGLOBAL
	opGETUPVAL
	opSETUPVAL
	opNEWTABLE
	opNEWARRAY
	opGETTABLE
	opSETTABLE
	opGETTABLEK
	opSETTABLEK
	opSELF
	opLEN
	opAPPEND
	opPOP
	opSHIFT
	opUNSHIFT
	opCONCAT
	opUPPER
	opLOWER
	opTRIM
	opCONTAINS
	opSTARTSWITH
	opENDSWITH
	opINDEXOF
	opSPLIT
	opJOIN
	opREPLACE
	opSLICE_STR
	opKEYS
	opHASKEY
	opTYPEOF_FAST
	opABS
	opSQRT
	opFLOOR
	opCEIL
	opROUND
	opSTR
	opPARSEINT
	opPARSEFLT
	opJMP
	opJMP_HOT
	opJMP_INTLOOP
	opTEST
	opTESTSET
	opEQJ
	opNEJ
	opLTJ
	opLEJ
	opEQJK
	opNEJK
	opLTJK
	opLEJK
	opGTJK
	opGEJK
	opADDI
	opSUBI
	opFORPREP
	opFORLOOP
	opITERINIT
	opITERNEXT
	opCLOSURE
	opCALL
	opTAILCALL
	opRETURN
	opTYPEOF
	opISTYPE
	opSTRCAT
	opSTRLEN
	opSUBSTR
	opIMPORT
	opEXPORT
	opTRY
	opENDTRY
	opTHROW
	opGETERROR
	opCLASS
	opINSTANCE
	opGETMETHOD
	opSETMETHOD
	opGETPROP
	opSETPROP
	opINHERIT
	opSUPER
	opFIBER
	opYIELD
	opRESUME
	opHOTLOOP
	opFUNCENTY
	opINCR
	opDECR
	opINCRG
	opDECRG
	opADDG
	opSUBG
	opGETARRAY_I
	opSETARRAY_I
	opARRLEN
	opPRINT
	opNOP
)

var rawOpNames = [...]string{
	"ADD", "SUB", "MUL", "DIV", "MOD", "POW", "UNM", "ADDK", "SUBK", "MULK",
	"DIVK", "EQ", "LT", "LE", "NEQ", "GT", "GE", "NOT", "AND", "OR",
	"MOVE", "LOADK", "LOADBOOL", "LOADNIL", "GETGLOBAL", "SETGLOBAL", "GETUPVAL", "SETUPVAL", "NEWTABLE", "NEWARRAY",
	"GETTABLE", "SETTABLE", "GETTABLEK", "SETTABLEK", "SELF", "LEN", "APPEND", "POP", "SHIFT", "UNSHIFT",
	"CONCAT", "UPPER", "LOWER", "TRIM", "CONTAINS", "STARTSWITH", "ENDSWITH", "INDEXOF", "SPLIT", "JOIN",
	"REPLACE", "SLICE_STR", "KEYS", "HASKEY", "TYPEOF_FAST", "ABS", "SQRT", "FLOOR", "CEIL", "ROUND",
	"STR", "PARSEINT", "PARSEFLT", "JMP", "JMP_HOT", "JMP_INTLOOP", "TEST", "TESTSET", "EQJ", "NEJ",
	"LTJ", "LEJ", "EQJK", "NEJK", "LTJK", "LEJK", "GTJK", "GEJK", "ADDI", "SUBI",
	"FORPREP", "FORLOOP", "ITERINIT", "ITERNEXT", "CLOSURE", "CALL", "TAILCALL", "RETURN", "TYPEOF", "ISTYPE",
	"STRCAT", "STRLEN", "SUBSTR", "IMPORT", "EXPORT", "TRY", "ENDTRY", "THROW", "GETERROR", "CLASS",
	"INSTANCE", "GETMETHOD", "SETMETHOD", "GETPROP", "SETPROP", "INHERIT", "SUPER", "FIBER", "YIELD", "RESUME",
	"HOTLOOP", "FUNCENTY", "INCR", "DECR", "INCRG", "DECRG", "ADDG", "SUBG", "GETARRAY_I", "SETARRAY_I",
	"ARRLEN", "PRINT", "NOP",
}

func (o rawOp) String() string {
	if int(o) < len(rawOpNames) {
		return rawOpNames[o]
	}
	return "UNKNOWN"
}

// DecodeProgram converts a raw bytecode word slice (vmregister.Instruction
// and hir.Instruction share the same uint32 representation, so the
// conversion is a reinterpretation, not a transformation) into the type
// the builder walks.
func DecodeProgram(code []uint32) []Instruction {
	out := make([]Instruction, len(code))
	for i, w := range code {
		out[i] = Instruction(w)
	}
	return out
}
