package vm

import "fmt"

// RuntimeError is a fatal diagnostic for the current Interpret call: the
// stack is reset and execution stops, but globals and the intern table
// persist so a REPL session can recover and keep going.
type RuntimeError struct {
	Line    int
	Message string
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
}
