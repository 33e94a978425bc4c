// cmd/sentra/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"sentra/internal/compregister"
	"sentra/internal/errors"
	"sentra/internal/jit"
	"sentra/internal/lexer"
	"sentra/internal/parser"
	"sentra/internal/vmregister"
)

const VERSION = "1.0.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("sentra %s\n", VERSION)
	case "run":
		runFile(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`sentra - run scripts against the register VM and JIT

Usage:
  sentra run [-jit-trace] <file.sn>
  sentra version
  sentra help`)
}

// runFile lexes, parses, compiles to register bytecode and executes the
// program, wiring the JIT profiler/compiler the same way NewRegisterVM does.
func runFile(args []string) {
	var filename string
	traceJIT := false
	for _, arg := range args {
		if arg == "-jit-trace" || arg == "--jit-trace" {
			traceJIT = true
			continue
		}
		if filename == "" {
			filename = arg
		}
	}
	if filename == "" {
		log.Fatal("no filename provided to run command")
	}

	if traceJIT {
		jit.Trace = func(format string, a ...any) {
			fmt.Fprintf(os.Stderr, "[jit] "+format+"\n", a...)
		}
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("could not read file: %v", err)
	}

	scanner := lexer.NewScannerWithFile(string(source), filename)
	tokens := scanner.ScanTokens()

	p := parser.NewParserWithSource(tokens, string(source), filename)

	var stmts []parser.Stmt
	func() {
		defer func() {
			if r := recover(); r != nil {
				reportAndExit(r)
			}
		}()
		stmts = p.Parse()
	}()

	registerVM := vmregister.NewRegisterVM()
	registerVM.SetModuleLoader(createModuleLoader())
	registerVM.SetCurrentFile(filename)

	absPath, _ := filepath.Abs(filename)
	registerVM.SetModulePaths([]string{
		filepath.Dir(absPath),
		".",
		filepath.Join(filepath.Dir(absPath), "lib"),
	})

	globalNames, nextID := registerVM.GetGlobalNames()
	c := compregister.NewCompilerWithGlobals(globalNames, nextID)

	mainFn, compileErr := c.Compile(stmts)
	if compileErr != nil {
		log.Fatalf("compilation error: %v", compileErr)
	}

	result, err := registerVM.Execute(mainFn, nil)
	if err != nil {
		reportAndExit(err)
	}
	_ = result
}

func reportAndExit(r interface{}) {
	switch e := r.(type) {
	case *errors.SentraError:
		fmt.Fprintf(os.Stderr, "%s\n", e.Error())
	case error:
		fmt.Fprintf(os.Stderr, "error: %v\n", e)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", e)
	}
	os.Exit(1)
}

// createModuleLoader resolves `import`-style file references relative to
// the running script, compiling each module with the VM's current global
// table so module and main-program global IDs never collide.
func createModuleLoader() vmregister.ModuleLoader {
	return func(vm *vmregister.RegisterVM, modulePath string) (*vmregister.FunctionObj, error) {
		source, err := os.ReadFile(modulePath)
		if err != nil {
			return nil, fmt.Errorf("cannot read module file: %w", err)
		}

		scanner := lexer.NewScannerWithFile(string(source), modulePath)
		tokens := scanner.ScanTokens()

		p := parser.NewParserWithSource(tokens, string(source), modulePath)
		stmts := p.Parse()

		globalNames, nextID := vm.GetGlobalNames()
		c := compregister.NewCompilerWithGlobals(globalNames, nextID)

		fn, err := c.Compile(stmts)
		if err != nil {
			return nil, fmt.Errorf("compilation error in module: %w", err)
		}
		return fn, nil
	}
}
