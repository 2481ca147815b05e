// Package compiler implements the single-pass Pratt parser/code generator
// described in spec.md §4.4: it walks the token stream exactly once,
// emitting bytecode directly into a chunk.Chunk as it recognizes each
// grammar rule, with no separate AST in between.
package compiler

import (
	"encoding/binary"
	"strconv"

	"nilan/chunk"
	"nilan/lexer"
	"nilan/table"
	"nilan/token"
)

// precedence is the binding power used by parsePrecedence to decide how
// far an infix chain should extend before returning control to its
// caller. Low to high, per spec.md §4.4.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(p *parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// maxLocals bounds the number of simultaneously live locals: a local's
// stack slot is encoded as a single byte operand.
const maxLocals = 256

// local records one lexical binding: its name token (for duplicate /
// shadowing checks and error messages) and the scope depth it was
// declared at. depth == -1 means "declared but not yet initialized" —
// the state that makes `var a = a;` a compile error rather than reading
// garbage.
type local struct {
	name  token.Token
	depth int
}

// compilerState is the per-compile scope tracker: an ordered list of
// locals (in stack-slot order) plus the current lexical nesting depth.
// spec.md §9 calls out that the source keeps this as an implicit global;
// we thread it explicitly as parser state instead.
type compilerState struct {
	locals     []local
	scopeDepth int
}

func (c *compilerState) localCount() int { return len(c.locals) }

// parser is the single-pass compile session: current/previous tokens,
// the lexer feeding them, the chunk being emitted into, the shared
// string interner, and the two error-recovery flags from spec.md §3.
type parser struct {
	lex *lexer.Lexer

	current  token.Token
	previous token.Token

	chunk   *chunk.Chunk
	strings *table.Strings

	comp *compilerState

	panicMode bool
	errors    []error

	rules map[token.Type]parseRule
}

// Compile parses source and emits its bytecode into a fresh chunk.Chunk,
// interning every string and identifier constant through strings so the
// intern invariant holds across compile time and run time. It returns
// the chunk and any compile diagnostics accumulated along the way; a
// non-empty error slice means the chunk should be discarded by the
// caller. Diagnostics accumulate rather than aborting on the first error
// because synchronize() resumes parsing at the next statement boundary.
func Compile(source string, strings *table.Strings) (*chunk.Chunk, []error) {
	p := &parser{
		lex:     lexer.New(source),
		chunk:   chunk.New(),
		strings: strings,
		comp:    &compilerState{},
	}
	p.rules = p.buildRules()

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	p.emitByte(byte(chunk.OpReturn))

	return p.chunk, p.errors
}

func (p *parser) buildRules() map[token.Type]parseRule {
	return map[token.Type]parseRule{
		token.LeftParen:    {(*parser).grouping, nil, precNone},
		token.Minus:        {(*parser).unary, (*parser).binary, precTerm},
		token.Plus:         {nil, (*parser).binary, precTerm},
		token.Slash:        {nil, (*parser).binary, precFactor},
		token.Star:         {nil, (*parser).binary, precFactor},
		token.Bang:         {(*parser).unary, nil, precNone},
		token.BangEqual:    {nil, (*parser).binary, precEquality},
		token.Equal:        {nil, nil, precNone},
		token.EqualEqual:   {nil, (*parser).binary, precEquality},
		token.Greater:      {nil, (*parser).binary, precComparison},
		token.GreaterEqual: {nil, (*parser).binary, precComparison},
		token.Less:         {nil, (*parser).binary, precComparison},
		token.LessEqual:    {nil, (*parser).binary, precComparison},
		token.Identifier:   {(*parser).variable, nil, precNone},
		token.String:       {(*parser).string, nil, precNone},
		token.Number:       {(*parser).number, nil, precNone},
		token.And:          {nil, (*parser).and, precAnd},
		token.Or:           {nil, (*parser).or, precOr},
		token.False:        {(*parser).literal, nil, precNone},
		token.Nil:          {(*parser).literal, nil, precNone},
		token.True:         {(*parser).literal, nil, precNone},
	}
}

func (p *parser) getRule(t token.Type) parseRule {
	return p.rules[t]
}

// ---- token stream plumbing ----

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.ScanToken()
		if p.current.Type != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(t token.Type) bool {
	return p.current.Type == t
}

func (p *parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(t token.Type, message string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

// ---- error reporting ----

func (p *parser) errorAtCurrent(message string) { p.errorAt(p.current, message) }
func (p *parser) error(message string)          { p.errorAt(p.previous, message) }

func (p *parser) errorAt(tok token.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	where := ""
	switch {
	case tok.Type == token.EOF:
		where = "at end"
	case tok.Type == token.Error:
		// no extra location detail for error tokens
	default:
		where = "at '" + tok.Lexeme + "'"
	}
	p.errors = append(p.errors, CompileError{Line: tok.Line, Where: where, Message: message})
}

// synchronize discards tokens until it reaches a likely statement
// boundary, so one syntax error doesn't cascade into a flood of
// spurious follow-on errors.
func (p *parser) synchronize() {
	p.panicMode = false

	for p.current.Type != token.EOF {
		if p.previous.Type == token.Semicolon {
			return
		}
		switch p.current.Type {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// ---- emission helpers ----

func (p *parser) emitByte(b byte) {
	p.chunk.Write(b, p.previous.Line)
}

func (p *parser) emitBytes(a, b byte) {
	p.emitByte(a)
	p.emitByte(b)
}

func (p *parser) makeConstant(value chunk.Value) byte {
	if len(p.chunk.Constants) >= chunk.MaxConstants {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(p.chunk.AddConstant(value))
}

func (p *parser) emitConstant(value chunk.Value) {
	p.emitBytes(byte(chunk.OpConstant), p.makeConstant(value))
}

// emitJump writes the jump opcode plus a two-byte placeholder operand and
// returns the offset of the first placeholder byte, to be patched later.
func (p *parser) emitJump(instruction chunk.OpCode) int {
	p.emitByte(byte(instruction))
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.chunk.Code) - 2
}

// patchJump backfills the placeholder at offset with the distance from
// just past the operand to the current end of the chunk.
func (p *parser) patchJump(offset int) {
	jump := len(p.chunk.Code) - offset - 2
	if jump > 0xffff {
		p.error("Too much code to jump over.")
		return
	}
	binary.BigEndian.PutUint16(p.chunk.Code[offset:offset+2], uint16(jump))
}

// emitLoop emits OP_LOOP with a backward 16-bit offset to loopStart, the
// byte offset of the loop's condition check. This is the OP_LOOP
// resolution of spec.md §9 open question #1: without it, a while body
// would execute at most once.
func (p *parser) emitLoop(loopStart int) {
	p.emitByte(byte(chunk.OpLoop))
	offset := len(p.chunk.Code) - loopStart + 2
	if offset > 0xffff {
		p.error("Loop body too large.")
		return
	}
	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset & 0xff))
}

// ---- declarations & statements ----

func (p *parser) declaration() {
	if p.match(token.Var) {
		p.varDeclaration()
	} else {
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.Equal) {
		p.expression()
	} else {
		p.emitByte(byte(chunk.OpNil))
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *parser) statement() {
	switch {
	case p.match(token.Print):
		p.printStatement()
	case p.match(token.If):
		p.ifStatement()
	case p.match(token.While):
		p.whileStatement()
	case p.match(token.LeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	p.emitByte(byte(chunk.OpPrint))
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	p.emitByte(byte(chunk.OpPop))
}

func (p *parser) ifStatement() {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitByte(byte(chunk.OpPop))
	p.statement()

	elseJump := p.emitJump(chunk.OpJump)

	p.patchJump(thenJump)
	p.emitByte(byte(chunk.OpPop))

	if p.match(token.Else) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := len(p.chunk.Code)
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitByte(byte(chunk.OpPop))
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitByte(byte(chunk.OpPop))
}

func (p *parser) block() {
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
}

func (p *parser) beginScope() {
	p.comp.scopeDepth++
}

func (p *parser) endScope() {
	p.comp.scopeDepth--
	for p.comp.localCount() > 0 && p.comp.locals[p.comp.localCount()-1].depth > p.comp.scopeDepth {
		p.emitByte(byte(chunk.OpPop))
		p.comp.locals = p.comp.locals[:p.comp.localCount()-1]
	}
}

// ---- variables ----

func (p *parser) parseVariable(errorMsg string) byte {
	p.consume(token.Identifier, errorMsg)

	p.declareVariable()
	if p.comp.scopeDepth > 0 {
		return 0 // locals are not looked up by constant index
	}
	return p.identifierConstant(p.previous)
}

func (p *parser) identifierConstant(name token.Token) byte {
	s := p.strings.Intern(name.Lexeme)
	return p.makeConstant(chunk.Obj(s))
}

func (p *parser) declareVariable() {
	if p.comp.scopeDepth == 0 {
		return
	}
	name := p.previous

	for i := p.comp.localCount() - 1; i >= 0; i-- {
		l := p.comp.locals[i]
		if l.depth != -1 && l.depth < p.comp.scopeDepth {
			break
		}
		if l.name.Lexeme == name.Lexeme {
			p.error("Already a variable with this name in this scope.")
		}
	}

	p.addLocal(name)
}

func (p *parser) addLocal(name token.Token) {
	if p.comp.localCount() >= maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.comp.locals = append(p.comp.locals, local{name: name, depth: -1})
}

func (p *parser) markInitialized() {
	if p.comp.scopeDepth == 0 {
		return
	}
	p.comp.locals[p.comp.localCount()-1].depth = p.comp.scopeDepth
}

func (p *parser) defineVariable(global byte) {
	if p.comp.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(byte(chunk.OpDefineGlobal), global)
}

func (p *parser) resolveLocal(name token.Token) int {
	for i := p.comp.localCount() - 1; i >= 0; i-- {
		l := p.comp.locals[i]
		if l.name.Lexeme == name.Lexeme {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (p *parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp chunk.OpCode
	arg := p.resolveLocal(name)
	var argByte byte
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
		argByte = byte(arg)
	} else {
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
		argByte = p.identifierConstant(name)
	}

	if canAssign && p.match(token.Equal) {
		p.expression()
		p.emitBytes(byte(setOp), argByte)
	} else {
		p.emitBytes(byte(getOp), argByte)
	}
}

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

// ---- expressions (Pratt) ----

func (p *parser) expression() {
	p.parsePrecedence(precAssignment)
}

func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	rule := p.getRule(p.previous.Type)
	if rule.prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	rule.prefix(p, canAssign)

	for prec <= p.getRule(p.current.Type).precedence {
		p.advance()
		infixRule := p.getRule(p.previous.Type).infix
		infixRule(p, canAssign)
	}

	if canAssign && p.match(token.Equal) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) grouping(_ bool) {
	p.expression()
	p.consume(token.RightParen, "Expect ')' after expression.")
}

func (p *parser) unary(_ bool) {
	opType := p.previous.Type
	p.parsePrecedence(precUnary)
	switch opType {
	case token.Minus:
		p.emitByte(byte(chunk.OpNegate))
	case token.Bang:
		p.emitByte(byte(chunk.OpNot))
	}
}

func (p *parser) binary(_ bool) {
	opType := p.previous.Type
	rule := p.getRule(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.BangEqual:
		p.emitBytes(byte(chunk.OpEqual), byte(chunk.OpNot))
	case token.EqualEqual:
		p.emitByte(byte(chunk.OpEqual))
	case token.Greater:
		p.emitByte(byte(chunk.OpGreater))
	case token.GreaterEqual:
		p.emitBytes(byte(chunk.OpLess), byte(chunk.OpNot))
	case token.Less:
		p.emitByte(byte(chunk.OpLess))
	case token.LessEqual:
		p.emitBytes(byte(chunk.OpGreater), byte(chunk.OpNot))
	case token.Plus:
		p.emitByte(byte(chunk.OpAdd))
	case token.Minus:
		p.emitByte(byte(chunk.OpSubtract))
	case token.Star:
		p.emitByte(byte(chunk.OpMultiply))
	case token.Slash:
		p.emitByte(byte(chunk.OpDivide))
	}
}

func (p *parser) and(_ bool) {
	endJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitByte(byte(chunk.OpPop))
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func (p *parser) or(_ bool) {
	elseJump := p.emitJump(chunk.OpJumpIfFalse)
	endJump := p.emitJump(chunk.OpJump)

	p.patchJump(elseJump)
	p.emitByte(byte(chunk.OpPop))

	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *parser) number(_ bool) {
	value, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.emitConstant(chunk.Number(value))
}

func (p *parser) string(_ bool) {
	lexeme := p.previous.Lexeme
	unquoted := lexeme[1 : len(lexeme)-1]
	s := p.strings.Intern(unquoted)
	p.emitConstant(chunk.Obj(s))
}

func (p *parser) literal(_ bool) {
	switch p.previous.Type {
	case token.False:
		p.emitByte(byte(chunk.OpFalse))
	case token.Nil:
		p.emitByte(byte(chunk.OpNil))
	case token.True:
		p.emitByte(byte(chunk.OpTrue))
	}
}
