package driver

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/hanyu/lang/machine"
)

// Repl reads statements line by line from stdio.Stdin and executes each one
// against a single long-lived VM, so that globals and the string-intern
// pool accumulate across lines the way a REPL is expected to behave.
// Compile and runtime errors are reported and the loop continues; they do
// not end the session.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	vm := machine.New()
	vm.Stdout = stdio.Stdout

	scanner := bufio.NewScanner(stdio.Stdin)
	fmt.Fprint(stdio.Stdout, "> ")
	for scanner.Scan() {
		line := scanner.Text()
		if _, err := vm.Interpret([]rune(line)); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		fmt.Fprint(stdio.Stdout, "> ")
	}
	fmt.Fprintln(stdio.Stdout)
	return scanner.Err()
}
