package compiler

import (
	"testing"

	"nilan/chunk"
	"nilan/table"
)

func compileOK(t *testing.T, source string) *chunk.Chunk {
	t.Helper()
	c, errs := Compile(source, table.NewStrings())
	if len(errs) > 0 {
		t.Fatalf("unexpected compile errors for %q: %v", source, errs)
	}
	return c
}

func TestCompileCodeLinesInvariant(t *testing.T) {
	c := compileOK(t, "print 1 + 2 * 3;")
	if len(c.Code) != len(c.Lines) {
		t.Fatalf("code/lines length mismatch: %d vs %d", len(c.Code), len(c.Lines))
	}
}

func TestCompileEmitsExpectedOpcodesForArithmetic(t *testing.T) {
	c := compileOK(t, "print 1 + 2 * 3;")
	want := []chunk.OpCode{
		chunk.OpConstant, chunk.OpConstant, chunk.OpConstant,
		chunk.OpMultiply, chunk.OpAdd, chunk.OpPrint, chunk.OpReturn,
	}
	gotOps := opsOf(c)
	if !sameOps(gotOps, want) {
		t.Errorf("got ops %v, want %v", gotOps, want)
	}
}

// opsOf walks a chunk's code and extracts just the opcode bytes, in
// order, skipping operand bytes.
func opsOf(c *chunk.Chunk) []chunk.OpCode {
	var ops []chunk.OpCode
	for i := 0; i < len(c.Code); {
		op := chunk.OpCode(c.Code[i])
		ops = append(ops, op)
		i += 1 + op.OperandBytes()
	}
	return ops
}

func sameOps(a, b []chunk.OpCode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCompileDeclaresGlobalAndReadsIt(t *testing.T) {
	c := compileOK(t, "var a = 1; print a;")
	gotOps := opsOf(c)
	want := []chunk.OpCode{
		chunk.OpConstant, chunk.OpDefineGlobal,
		chunk.OpGetGlobal, chunk.OpPrint,
		chunk.OpReturn,
	}
	if !sameOps(gotOps, want) {
		t.Errorf("got ops %v, want %v", gotOps, want)
	}
}

func TestCompileLocalAssignmentUsesSetLocal(t *testing.T) {
	c := compileOK(t, "{ var a = 1; a = 2; }")
	gotOps := opsOf(c)
	want := []chunk.OpCode{
		chunk.OpConstant, // initializer 1
		chunk.OpConstant, // rhs of a = 2
		chunk.OpSetLocal,
		chunk.OpPop, // expression statement discards assignment result
		chunk.OpPop, // end of block pops the local
		chunk.OpReturn,
	}
	if !sameOps(gotOps, want) {
		t.Errorf("got ops %v, want %v", gotOps, want)
	}
}

func TestCompileErrorOnUninitializedLocalSelfReference(t *testing.T) {
	_, errs := Compile("{ var a = a; }", table.NewStrings())
	if len(errs) == 0 {
		t.Fatal("expected a compile error for `var a = a;` inside a block")
	}
	found := false
	for _, e := range errs {
		if ce, ok := e.(CompileError); ok && ce.Message == "Can't read local variable in its own initializer." {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'Can't read local variable in its own initializer.' error, got %v", errs)
	}
}

func TestCompileErrorDuplicateLocalInSameScope(t *testing.T) {
	_, errs := Compile("{ var a = 1; var a = 2; }", table.NewStrings())
	if len(errs) == 0 {
		t.Fatal("expected a compile error for redeclaring a local in the same scope")
	}
}

func TestCompileAllowsShadowingAcrossScopes(t *testing.T) {
	compileOK(t, "var a = 1; { var a = 2; print a; } print a;")
}

func TestCompileErrorUnexpectedToken(t *testing.T) {
	_, errs := Compile("var ;", table.NewStrings())
	if len(errs) == 0 {
		t.Fatal("expected a compile error for a missing variable name")
	}
}

func TestCompileIfElseEmitsBackpatchedJumps(t *testing.T) {
	c := compileOK(t, `if (true) print "yes"; else print "no";`)
	gotOps := opsOf(c)
	want := []chunk.OpCode{
		chunk.OpTrue,
		chunk.OpJumpIfFalse,
		chunk.OpPop,
		chunk.OpConstant, chunk.OpPrint,
		chunk.OpJump,
		chunk.OpPop,
		chunk.OpConstant, chunk.OpPrint,
		chunk.OpReturn,
	}
	if !sameOps(gotOps, want) {
		t.Errorf("got ops %v, want %v", gotOps, want)
	}
}

func TestCompileWhileEmitsLoopOpcode(t *testing.T) {
	c := compileOK(t, "while (false) print 1;")
	gotOps := opsOf(c)
	want := []chunk.OpCode{
		chunk.OpFalse,
		chunk.OpJumpIfFalse,
		chunk.OpPop,
		chunk.OpConstant, chunk.OpPrint,
		chunk.OpLoop,
		chunk.OpPop,
		chunk.OpReturn,
	}
	if !sameOps(gotOps, want) {
		t.Errorf("got ops %v, want %v", gotOps, want)
	}
}

func TestCompileAndShortCircuit(t *testing.T) {
	c := compileOK(t, "print true and false;")
	gotOps := opsOf(c)
	want := []chunk.OpCode{
		chunk.OpTrue, chunk.OpJumpIfFalse, chunk.OpPop, chunk.OpFalse,
		chunk.OpPrint, chunk.OpReturn,
	}
	if !sameOps(gotOps, want) {
		t.Errorf("got ops %v, want %v", gotOps, want)
	}
}

func TestCompileTooManyConstants(t *testing.T) {
	source := ""
	for i := 0; i < 300; i++ {
		source += "1;\n"
	}
	_, errs := Compile(source, table.NewStrings())
	if len(errs) == 0 {
		t.Fatal("expected 'Too many constants in one chunk.' past 256 constants")
	}
}

func TestCompileInternsEqualStringLiteralsToOneHandle(t *testing.T) {
	strs := table.NewStrings()
	c, errs := Compile(`"foo"; "foo";`, strs)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !c.Constants[0].Equal(c.Constants[1]) {
		t.Error("two equal string literals in the same compile should intern to the same handle")
	}
}
