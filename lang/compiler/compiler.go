// Package compiler implements the single-pass Pratt-style compiler: it
// consumes tokens from lang/lexer and emits bytecode directly into a Chunk,
// with no separate AST pass, resolving lexical scope, upvalue capture, and
// class hierarchy as it goes.
package compiler

import (
	"github.com/mna/hanyu/lang/lexer"
	"github.com/mna/hanyu/lang/token"
)

const (
	maxLocals    = 256
	maxUpvalues  = 256
	maxArguments = 255
)

// precedence levels, lowest to highest.
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix, infix parseFn
	prec          precedence
}

// local is a compile-time record of a declared local variable.
type local struct {
	name       string
	depth      int // -1 means "declared but not yet initialized"
	isCaptured bool
}

// loopState tracks the innermost enclosing loop so that break/continue can
// patch the right jumps and unwind the right number of locals.
type loopState struct {
	enclosing      *loopState
	continueTarget int // code offset the LOOP instruction for "continue" jumps to
	breakJumps     []int
	localBase      int // len(fc.locals) when this loop's own scope began
}

// funcState holds per-function compiler state, stacked via an enclosing
// pointer so that nested function/method bodies recursively push their own
// state on top.
type funcState struct {
	enclosing *funcState
	proto     *FunctionProto
	kind      FunctionKind

	locals     []local
	scopeDepth int
	loop       *loopState
}

func newFuncState(enclosing *funcState, name string, kind FunctionKind) *funcState {
	fc := &funcState{
		enclosing: enclosing,
		kind:      kind,
		proto:     &FunctionProto{Name: name, Kind: kind},
	}
	// Slot 0 is reserved: for methods/initializers it binds "this", otherwise
	// it is an unnamed placeholder that can never be referenced by name.
	slotName := ""
	if kind == KindMethod || kind == KindInitializer {
		slotName = "this"
	}
	fc.locals = append(fc.locals, local{name: slotName, depth: 0})
	return fc
}

// classState is stacked per class declaration to validate "super" usage.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// Compiler is the single-pass compiler's top-level driver: a Pratt parser
// that emits bytecode as it recognizes grammar productions.
type Compiler struct {
	lx *lexer.Lexer

	prevTok, curTok token.Token
	prevVal, curVal lexer.Value

	errs      ErrorList
	panicMode bool

	fc *funcState
	cc *classState

	rules [token.Token(255)]parseRule
}

// Compile compiles source into a top-level FunctionProto (the "script"
// function). A non-nil error is always an ErrorList; no error implies the
// returned function is safe to execute.
func Compile(source []rune) (*FunctionProto, error) {
	var lexErrs lexer.ErrorList
	c := &Compiler{lx: lexer.NewLexer(source, lexErrs.Add)}
	c.initRules()
	c.fc = newFuncState(nil, "", KindScript)

	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "expect end of expression")
	proto := c.endFunction()

	if lexErrs.Err() != nil {
		for _, e := range lexErrs {
			c.errs.add(e.Line, "", e.Msg)
		}
	}
	if err := c.errs.Err(); err != nil {
		return nil, err
	}
	return proto, nil
}

// ---- token stream -------------------------------------------------------

func (c *Compiler) advance() {
	c.prevTok, c.prevVal = c.curTok, c.curVal
	for {
		c.curTok, c.curVal = c.lx.Scan()
		if c.curTok != token.ILLEGAL {
			break
		}
		// The lexer already reported the error via its errHandler; just skip
		// the token and keep scanning so parsing can make progress.
	}
}

func (c *Compiler) check(t token.Token) bool { return c.curTok == t }

func (c *Compiler) match(t token.Token) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Token, msg string) {
	if c.check(t) {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// ---- error handling & panic-mode recovery --------------------------------

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.curTok, c.curVal, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.prevTok, c.prevVal, msg) }

func (c *Compiler) errorAt(tok token.Token, val lexer.Value, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	lexeme := val.Lexeme
	if tok == token.EOF {
		lexeme = "end"
	}
	c.errs.add(val.Line, lexeme, msg)
}

// synchronize discards tokens until a statement boundary, so a single
// mistake doesn't cascade into a flood of spurious errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for !c.check(token.EOF) {
		if c.prevTok == token.SEMI {
			return
		}
		switch c.curTok {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN, token.SWITCH:
			return
		}
		c.advance()
	}
}

// ---- chunk emission -------------------------------------------------------

func (c *Compiler) chunk() *Chunk { return &c.fc.proto.Chunk }

func (c *Compiler) emit(op OpCode) { c.chunk().Write(byte(op), c.prevVal.Line) }

func (c *Compiler) emitByte(b byte) { c.chunk().Write(b, c.prevVal.Line) }

func (c *Compiler) emitOp(op OpCode, arg byte) {
	c.emit(op)
	c.emitByte(arg)
}

func (c *Compiler) emitConstant(v any) {
	idx, err := c.chunk().AddConstant(v)
	if err != nil {
		c.error(err.Error())
		return
	}
	c.emitOp(CONSTANT, byte(idx))
}

// emitJump emits op followed by a two-byte placeholder operand and returns
// the offset of that placeholder, to be patched once the target is known.
func (c *Compiler) emitJump(op OpCode) int {
	c.emit(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("too much code to jump over")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emit(LOOP)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("loop body too large")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) emitReturn() {
	if c.fc.kind == KindInitializer {
		// An initializer implicitly returns the instance bound to "this".
		c.emitOp(GET_LOCAL, 0)
	} else {
		c.emit(NIL)
	}
	c.emit(RETURN)
}

func (c *Compiler) identifierConstant(name string) byte {
	idx, err := c.chunk().AddConstant(name)
	if err != nil {
		c.error(err.Error())
		return 0
	}
	return byte(idx)
}

// endFunction finalizes the current function, popping the funcState stack
// to the enclosing function (or nil at the top level).
func (c *Compiler) endFunction() *FunctionProto {
	c.emitReturn()
	proto := c.fc.proto
	c.fc = c.fc.enclosing
	return proto
}

// ---- scopes & locals ------------------------------------------------------

func (c *Compiler) beginScope() { c.fc.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fc.scopeDepth--
	fc := c.fc
	for len(fc.locals) > 0 && fc.locals[len(fc.locals)-1].depth > fc.scopeDepth {
		last := fc.locals[len(fc.locals)-1]
		if last.isCaptured {
			c.emit(CLOSE_UPVALUE)
		} else {
			c.emit(POP)
		}
		fc.locals = fc.locals[:len(fc.locals)-1]
	}
}

func (c *Compiler) addLocal(name string) {
	if len(c.fc.locals) >= maxLocals {
		c.error("too many local variables in function")
		return
	}
	c.fc.locals = append(c.fc.locals, local{name: name, depth: -1})
}

func (c *Compiler) declareVariable(name string) {
	if c.fc.scopeDepth == 0 {
		return // globals are resolved dynamically by name, no local slot
	}
	for i := len(c.fc.locals) - 1; i >= 0; i-- {
		l := c.fc.locals[i]
		if l.depth != -1 && l.depth < c.fc.scopeDepth {
			break
		}
		if l.name == name {
			c.error("already a variable with this name in this scope")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) markInitialized() {
	if c.fc.scopeDepth == 0 {
		return
	}
	c.fc.locals[len(c.fc.locals)-1].depth = c.fc.scopeDepth
}

// parseVariable consumes an identifier, declares it as a local (if scoped),
// and returns the constant-pool index to use for DEFINE_GLOBAL at global
// scope (ignored for locals).
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.IDENT, errMsg)
	name := c.prevVal.Lexeme
	c.declareVariable(name)
	if c.fc.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global byte) {
	if c.fc.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOp(DEFINE_GLOBAL, global)
}

func resolveLocal(fc *funcState, name string) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name == name {
			return i
		}
	}
	return -1
}

// resolveUpvalue recursively resolves name in enclosing functions, adding
// (and deduplicating) upvalue descriptors along the chain, following the
// scope-resolution order local -> upvalue -> global.
func resolveUpvalue(fc *funcState, name string) int {
	if fc.enclosing == nil {
		return -1
	}
	if idx := resolveLocal(fc.enclosing, name); idx != -1 {
		fc.enclosing.locals[idx].isCaptured = true
		return addUpvalue(fc, uint8(idx), true)
	}
	if idx := resolveUpvalue(fc.enclosing, name); idx != -1 {
		return addUpvalue(fc, uint8(idx), false)
	}
	return -1
}

func addUpvalue(fc *funcState, index uint8, isLocal bool) int {
	for i, uv := range fc.proto.Upvalues {
		if uv.Index == index && uv.IsLocal == isLocal {
			return i
		}
	}
	if len(fc.proto.Upvalues) >= maxUpvalues {
		return -1
	}
	fc.proto.Upvalues = append(fc.proto.Upvalues, UpvalueDesc{Index: index, IsLocal: isLocal})
	fc.proto.UpvalueCount = len(fc.proto.Upvalues)
	return len(fc.proto.Upvalues) - 1
}

// ---- top-level grammar ----------------------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("expect variable name")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emit(NIL)
	}
	c.consume(token.SEMI, "expect ';' after variable declaration")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("expect function name")
	c.markInitialized()
	c.function(KindFunction)
	c.defineVariable(global)
}

// function compiles a function body (parameters + block) as a nested
// FunctionProto and emits a CLOSURE instruction referencing it, followed by
// its upvalue descriptor pairs.
func (c *Compiler) function(kind FunctionKind) {
	name := c.prevVal.Lexeme
	enclosing := c.fc
	c.fc = newFuncState(enclosing, name, kind)
	c.beginScope()

	c.consume(token.LPAREN, "expect '(' after function name")
	if !c.check(token.RPAREN) {
		for {
			c.fc.proto.Arity++
			if c.fc.proto.Arity > maxArguments {
				c.errorAtCurrent("can't have more than 255 parameters")
			}
			paramConst := c.parseVariable("expect parameter name")
			c.defineVariable(paramConst)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expect ')' after parameters")
	c.consume(token.LBRACE, "expect '{' before function body")
	c.block()

	proto := c.endFunction()
	upvalues := proto.Upvalues
	c.fc = enclosing

	idx, err := c.chunk().AddConstant(proto)
	if err != nil {
		c.error(err.Error())
		return
	}
	c.emitOp(CLOSURE, byte(idx))
	for _, uv := range upvalues {
		if uv.IsLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(uv.Index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "expect class name")
	className := c.prevVal.Lexeme
	nameConst := c.identifierConstant(className)
	c.declareVariable(className)

	c.emitOp(CLASS, nameConst)
	c.defineVariable(nameConst)

	cc := &classState{enclosing: c.cc}
	c.cc = cc

	if c.match(token.EXTENDS) {
		c.consume(token.IDENT, "expect superclass name")
		superName := c.prevVal.Lexeme
		if superName == className {
			c.error("a class can't inherit from itself")
		}
		c.namedVariable(superName, false)

		c.beginScope()
		c.addLocal("super")
		c.markInitialized()

		c.namedVariable(className, false)
		c.emit(INHERIT)
		cc.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(token.LBRACE, "expect '{' before class body")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "expect '}' after class body")
	c.emit(POP)

	if cc.hasSuperclass {
		c.endScope()
	}
	c.cc = cc.enclosing
}

func (c *Compiler) method() {
	c.consume(token.IDENT, "expect method name")
	name := c.prevVal.Lexeme
	nameConst := c.identifierConstant(name)

	kind := KindMethod
	if name == token.InitializerName {
		kind = KindInitializer
	}
	c.function(kind)
	c.emitOp(METHOD, nameConst)
}

// ---- statements -----------------------------------------------------------

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.SWITCH):
		c.switchStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "expect '}' after block")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMI, "expect ';' after value")
	c.emit(PRINT)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMI, "expect ';' after expression")
	c.emit(POP)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "expect '(' after 'if'")
	c.expression()
	c.consume(token.RPAREN, "expect ')' after condition")

	thenJump := c.emitJump(JUMP_IF_FALSE)
	c.emit(POP)
	c.statement()

	elseJump := c.emitJump(JUMP)
	c.patchJump(thenJump)
	c.emit(POP)
	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) pushLoop() *loopState {
	ls := &loopState{enclosing: c.fc.loop, localBase: len(c.fc.locals)}
	c.fc.loop = ls
	return ls
}

func (c *Compiler) popLoop() {
	ls := c.fc.loop
	for _, j := range ls.breakJumps {
		c.patchJump(j)
	}
	c.fc.loop = ls.enclosing
}

func (c *Compiler) whileStatement() {
	ls := c.pushLoop()
	loopStart := len(c.chunk().Code)
	ls.continueTarget = loopStart

	c.consume(token.LPAREN, "expect '(' after 'while'")
	c.expression()
	c.consume(token.RPAREN, "expect ')' after condition")

	exitJump := c.emitJump(JUMP_IF_FALSE)
	c.emit(POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emit(POP)
	c.popLoop()
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "expect '(' after 'for'")

	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	ls := c.pushLoop()
	loopStart := len(c.chunk().Code)
	ls.continueTarget = loopStart

	exitJump := -1
	if !c.match(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "expect ';' after loop condition")
		exitJump = c.emitJump(JUMP_IF_FALSE)
		c.emit(POP)
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(JUMP)
		incrStart := len(c.chunk().Code)
		c.expression()
		c.emit(POP)
		c.consume(token.RPAREN, "expect ')' after for clauses")

		c.emitLoop(loopStart)
		loopStart = incrStart
		ls.continueTarget = incrStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RPAREN, "expect ')' after for clauses")
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emit(POP)
	}
	c.popLoop()
	c.endScope()
}

func (c *Compiler) breakStatement() {
	c.consume(token.SEMI, "expect ';' after 'break'")
	ls := c.fc.loop
	if ls == nil {
		c.error("can't use '打断' outside a loop")
		return
	}
	c.popLocalsSince(ls.localBase)
	ls.breakJumps = append(ls.breakJumps, c.emitJump(JUMP))
}

func (c *Compiler) continueStatement() {
	c.consume(token.SEMI, "expect ';' after 'continue'")
	ls := c.fc.loop
	if ls == nil {
		c.error("can't use '继续' outside a loop")
		return
	}
	c.popLocalsSince(ls.localBase)
	c.emitLoop(ls.continueTarget)
}

// popLocalsSince emits POP/CLOSE_UPVALUE for every local declared after
// base, without touching the compiler's own locals bookkeeping (the
// corresponding scopes are still open; this only corrects the runtime stack
// at an early-exit jump).
func (c *Compiler) popLocalsSince(base int) {
	for i := len(c.fc.locals) - 1; i >= base; i-- {
		if c.fc.locals[i].isCaptured {
			c.emit(CLOSE_UPVALUE)
		} else {
			c.emit(POP)
		}
	}
}

func (c *Compiler) switchStatement() {
	c.consume(token.LPAREN, "expect '(' after 'switch'")
	c.expression()
	c.consume(token.RPAREN, "expect ')' after switch value")
	c.consume(token.LBRACE, "expect '{' before switch body")

	var endJumps []int
	sawDefault := false
	for c.match(token.CASE) {
		c.emit(DUP)
		c.expression()
		c.emit(EQUAL)
		c.consume(token.COLON, "expect ':' after case value")

		failJump := c.emitJump(JUMP_IF_FALSE)
		c.emit(POP) // discard the "true" comparison result
		c.emit(POP) // discard the matched switch value

		for !c.check(token.CASE) && !c.check(token.DEFAULT) && !c.check(token.RBRACE) {
			c.statement()
		}
		endJumps = append(endJumps, c.emitJump(JUMP))

		c.patchJump(failJump)
		c.emit(POP) // discard the "false" comparison result
	}

	if c.match(token.DEFAULT) {
		sawDefault = true
		c.consume(token.COLON, "expect ':' after 'default'")
		c.emit(POP) // no case matched; discard the switch value
		for !c.check(token.RBRACE) {
			c.statement()
		}
	}
	if !sawDefault {
		c.emit(POP) // no case matched and no default; discard the switch value
	}

	c.consume(token.RBRACE, "expect '}' after switch body")
	for _, j := range endJumps {
		c.patchJump(j)
	}
}

func (c *Compiler) returnStatement() {
	if c.fc.kind == KindScript {
		c.error("can't return from top-level code")
	}
	if c.match(token.SEMI) {
		c.emitReturn()
		return
	}
	if c.fc.kind == KindInitializer {
		c.error("can't return a value from an initializer")
	}
	c.expression()
	c.consume(token.SEMI, "expect ';' after return value")
	c.emit(RETURN)
}

// ---- expressions ------------------------------------------------------

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := c.rules[c.prevTok].prefix
	if prefix == nil {
		c.error("expect expression")
		return
	}
	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= c.rules[c.curTok].prec {
		c.advance()
		infix := c.rules[c.prevTok].infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("invalid assignment target")
	}
}

func parseNumber(c *Compiler, _ bool) {
	c.emitConstant(c.prevVal.Number)
}

func parseString(c *Compiler, _ bool) {
	c.emitConstant(c.prevVal.String)
}

func parseLiteral(c *Compiler, _ bool) {
	switch c.prevTok {
	case token.FALSE:
		c.emit(FALSE)
	case token.TRUE:
		c.emit(TRUE)
	case token.NIL:
		c.emit(NIL)
	}
}

func parseGrouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RPAREN, "expect ')' after expression")
}

func parseUnary(c *Compiler, _ bool) {
	op := c.prevTok
	c.parsePrecedence(precUnary)
	switch op {
	case token.BANG:
		c.emit(NOT)
	case token.MINUS:
		c.emit(NEGATE)
	}
}

func parseBinary(c *Compiler, _ bool) {
	op := c.prevTok
	rule := c.rules[op]
	c.parsePrecedence(rule.prec + 1)
	switch op {
	case token.BANG_EQ:
		c.emit(EQUAL)
		c.emit(NOT)
	case token.EQ_EQ:
		c.emit(EQUAL)
	case token.GREATER:
		c.emit(GREATER)
	case token.GREATER_EQ:
		c.emit(LESS)
		c.emit(NOT)
	case token.LESS:
		c.emit(LESS)
	case token.LESS_EQ:
		c.emit(GREATER)
		c.emit(NOT)
	case token.PLUS:
		c.emit(ADD)
	case token.MINUS:
		c.emit(SUB)
	case token.STAR:
		c.emit(MUL)
	case token.SLASH:
		c.emit(DIV)
	case token.PERCENT:
		c.emit(MOD)
	}
}

func parseAnd(c *Compiler, _ bool) {
	endJump := c.emitJump(JUMP_IF_FALSE)
	c.emit(POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func parseOr(c *Compiler, _ bool) {
	elseJump := c.emitJump(JUMP_IF_FALSE)
	endJump := c.emitJump(JUMP)
	c.patchJump(elseJump)
	c.emit(POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func parseCall(c *Compiler, _ bool) {
	argc := c.argumentList()
	c.emitOp(CALL, byte(argc))
}

func (c *Compiler) argumentList() int {
	argc := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == maxArguments {
				c.error("can't have more than 255 arguments")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expect ')' after arguments")
	return argc
}

// parseDot compiles property access, assignment, compound assignment, and
// the GET_PROPERTY/INVOKE call-fusion shortcut.
func parseDot(c *Compiler, canAssign bool) {
	c.consume(token.IDENT, "expect property name after '.'")
	name := c.prevVal.Lexeme
	nameConst := c.identifierConstant(name)

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOp(SET_PROPERTY, nameConst)
	case canAssign && (c.check(token.PLUS_EQ) || c.check(token.MINUS_EQ)):
		isAdd := c.curTok == token.PLUS_EQ
		c.advance()
		c.emit(DUP)
		c.emitOp(GET_PROPERTY, nameConst)
		c.expression()
		if isAdd {
			c.emit(ADD)
		} else {
			c.emit(SUB)
		}
		c.emitOp(SET_PROPERTY, nameConst)
	case canAssign && (c.check(token.PLUS_PLUS) || c.check(token.MINUS_MINUS)):
		isInc := c.curTok == token.PLUS_PLUS
		c.advance()
		c.emit(DUP)
		c.emitOp(GET_PROPERTY, nameConst)
		c.emitConstant(float64(1))
		if isInc {
			c.emit(ADD)
		} else {
			c.emit(SUB)
		}
		c.emitOp(SET_PROPERTY, nameConst)
	case c.match(token.LPAREN):
		argc := c.argumentList()
		c.emit(INVOKE)
		c.emitByte(nameConst)
		c.emitByte(byte(argc))
	default:
		c.emitOp(GET_PROPERTY, nameConst)
	}
}

func parseThis(c *Compiler, _ bool) {
	if c.cc == nil {
		c.error("can't use '这' outside of a class")
		return
	}
	c.namedVariable("this", false)
}

func parseSuper(c *Compiler, _ bool) {
	switch {
	case c.cc == nil:
		c.error("can't use '超' outside of a class")
	case !c.cc.hasSuperclass:
		c.error("can't use '超' in a class with no superclass")
	}
	c.consume(token.DOT, "expect '.' after '超'")
	c.consume(token.IDENT, "expect superclass method name")
	nameConst := c.identifierConstant(c.prevVal.Lexeme)

	c.namedVariable("this", false)
	if c.match(token.LPAREN) {
		argc := c.argumentList()
		c.namedVariable("super", false)
		c.emit(SUPER_INVOKE)
		c.emitByte(nameConst)
		c.emitByte(byte(argc))
		return
	}
	c.namedVariable("super", false)
	c.emitOp(GET_SUPER, nameConst)
}

func parseVariableExpr(c *Compiler, canAssign bool) {
	c.namedVariable(c.prevVal.Lexeme, canAssign)
}

// namedVariable resolves name to a local, upvalue, or global and emits the
// matching get/set opcode, also handling compound assignment and ++/--
// forms for simple (non-property) targets.
func (c *Compiler) namedVariable(name string, canAssign bool) {
	var get, set OpCode
	var arg byte

	if idx := resolveLocal(c.fc, name); idx != -1 {
		get, set, arg = GET_LOCAL, SET_LOCAL, byte(idx)
	} else if idx := resolveUpvalue(c.fc, name); idx != -1 {
		get, set, arg = GET_UPVALUE, SET_UPVALUE, byte(idx)
	} else {
		k := c.identifierConstant(name)
		get, set, arg = GET_GLOBAL, SET_GLOBAL, k
	}

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOp(set, arg)
	case canAssign && (c.check(token.PLUS_EQ) || c.check(token.MINUS_EQ)):
		isAdd := c.curTok == token.PLUS_EQ
		c.advance()
		c.emitOp(get, arg)
		c.expression()
		if isAdd {
			c.emit(ADD)
		} else {
			c.emit(SUB)
		}
		c.emitOp(set, arg)
	case canAssign && (c.check(token.PLUS_PLUS) || c.check(token.MINUS_MINUS)):
		isInc := c.curTok == token.PLUS_PLUS
		c.advance()
		c.emitOp(get, arg)
		c.emitConstant(float64(1))
		if isInc {
			c.emit(ADD)
		} else {
			c.emit(SUB)
		}
		c.emitOp(set, arg)
	default:
		c.emitOp(get, arg)
	}
}

// ---- parse rule table -----------------------------------------------------

func (c *Compiler) initRules() {
	c.rules[token.LPAREN] = parseRule{parseGrouping, parseCall, precCall}
	c.rules[token.DOT] = parseRule{nil, parseDot, precCall}
	c.rules[token.MINUS] = parseRule{parseUnary, parseBinary, precTerm}
	c.rules[token.PLUS] = parseRule{nil, parseBinary, precTerm}
	c.rules[token.SLASH] = parseRule{nil, parseBinary, precFactor}
	c.rules[token.STAR] = parseRule{nil, parseBinary, precFactor}
	c.rules[token.PERCENT] = parseRule{nil, parseBinary, precFactor}
	c.rules[token.BANG] = parseRule{parseUnary, nil, precNone}
	c.rules[token.BANG_EQ] = parseRule{nil, parseBinary, precEquality}
	c.rules[token.EQ_EQ] = parseRule{nil, parseBinary, precEquality}
	c.rules[token.GREATER] = parseRule{nil, parseBinary, precComparison}
	c.rules[token.GREATER_EQ] = parseRule{nil, parseBinary, precComparison}
	c.rules[token.LESS] = parseRule{nil, parseBinary, precComparison}
	c.rules[token.LESS_EQ] = parseRule{nil, parseBinary, precComparison}
	c.rules[token.IDENT] = parseRule{parseVariableExpr, nil, precNone}
	c.rules[token.STRING] = parseRule{parseString, nil, precNone}
	c.rules[token.NUMBER] = parseRule{parseNumber, nil, precNone}
	c.rules[token.AND] = parseRule{nil, parseAnd, precAnd}
	c.rules[token.OR] = parseRule{nil, parseOr, precOr}
	c.rules[token.FALSE] = parseRule{parseLiteral, nil, precNone}
	c.rules[token.TRUE] = parseRule{parseLiteral, nil, precNone}
	c.rules[token.NIL] = parseRule{parseLiteral, nil, precNone}
	c.rules[token.THIS] = parseRule{parseThis, nil, precNone}
	c.rules[token.SUPER] = parseRule{parseSuper, nil, precNone}
}
