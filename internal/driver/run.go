package driver

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/hanyu/lang/machine"
)

// Run compiles and executes the single script named by args[0].
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return &exitCodeError{code: exitUsage, err: err}
	}

	vm := machine.New()
	vm.Stdout = stdio.Stdout

	res, err := vm.Interpret([]rune(string(src)))
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	switch res {
	case machine.ResultCompileError:
		return &exitCodeError{code: exitCompile, err: err}
	case machine.ResultRuntimeError:
		return &exitCodeError{code: exitRuntime, err: err}
	default:
		return nil
	}
}
