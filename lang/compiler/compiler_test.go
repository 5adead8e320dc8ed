package compiler_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/hanyu/lang/compiler"
)

func mustCompile(t *testing.T, src string) *compiler.FunctionProto {
	t.Helper()
	proto, err := compiler.Compile([]rune(src))
	require.NoError(t, err)
	require.NotNil(t, proto)
	return proto
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	proto := mustCompile(t, "打印 1 + 2 * 3;")
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "constant")
	require.Contains(t, dis, "mul")
	require.Contains(t, dis, "add")
	require.Contains(t, dis, "print")
}

func TestCompileGlobalVarDeclaration(t *testing.T) {
	proto := mustCompile(t, "变量 x = 1;")
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "define_global")
}

func TestCompileLocalScopeUsesSlots(t *testing.T) {
	proto := mustCompile(t, "「 变量 x = 1; 打印 x; 」")
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "get_local")
	require.NotContains(t, dis, "get_global")
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	proto := mustCompile(t, `
		功能 外 () {
			变量 x = 1;
			功能 内 () { 打印 x; }
			返回 内;
		}
	`)
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "closure")

	// Constant 0 of the script is the global name "外"; the function follows.
	outer, ok := proto.Chunk.Constants[1].(*compiler.FunctionProto)
	require.True(t, ok)
	// Constant 0 of 外 is the number 1; the inner function follows.
	innerProto, ok := outer.Chunk.Constants[1].(*compiler.FunctionProto)
	require.True(t, ok)
	inner := innerProto.Chunk.Disassemble("内")
	require.Contains(t, inner, "get_upvalue")
}

func TestCompileIfElseEmitsJumps(t *testing.T) {
	proto := mustCompile(t, `如果 (真) { 打印 1; } 否则 { 打印 2; }`)
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "jump_if_false")
	require.Contains(t, dis, "jump")
}

func TestCompileWhileLoopEmitsLoop(t *testing.T) {
	proto := mustCompile(t, `变量 i = 0; 而 (i 小 3) { i++; }`)
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "loop")
}

func TestCompileForLoopAcceptsAsciiPunctuation(t *testing.T) {
	proto := mustCompile(t, `对于 (变量 i = 0; i 小 3; i++) { 如果 (i 等 1) 继续; 打印 i; }`)
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "loop")
	require.Contains(t, dis, "get_local")
}

func TestCompileSwitchStatement(t *testing.T) {
	proto := mustCompile(t, `
		变量 x = 1;
		切换 (x) {
			案例 1: 打印 "one";
			预设: 打印 "other";
		}
	`)
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "dup")
	require.Contains(t, dis, "equal")
}

func TestCompileClassWithSuperclass(t *testing.T) {
	proto := mustCompile(t, `
		类 A { 问候 () { 打印 "hi"; } }
		类 B < A {
			初始化 () {}
			问候 () { 超.问候(); }
		}
	`)
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "class")
	require.Contains(t, dis, "inherit")
	require.Contains(t, dis, "method")
}

func TestCompileCompoundAssignmentUsesNoDup(t *testing.T) {
	proto := mustCompile(t, `变量 x = 1; x += 2;`)
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "get_global")
	require.Contains(t, dis, "add")
	require.Contains(t, dis, "set_global")
	require.NotContains(t, dis, "dup")
}

func TestCompilePropertyCompoundAssignmentDuplicatesReceiver(t *testing.T) {
	proto := mustCompile(t, `
		类 C { 初始化 () { 这.n = 0; } }
		变量 c = C();
		c.n += 1;
	`)
	dis := proto.Chunk.Disassemble("script")
	require.Contains(t, dis, "dup")
	require.Contains(t, dis, "get_property")
	require.Contains(t, dis, "set_property")
}

func TestCompileBreakOutsideLoopIsError(t *testing.T) {
	_, err := compiler.Compile([]rune(`打断;`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "loop")
}

func TestCompileReturnOutsideFunctionIsError(t *testing.T) {
	_, err := compiler.Compile([]rune(`返回 1;`))
	require.Error(t, err)
}

func TestCompileThisOutsideClassIsError(t *testing.T) {
	_, err := compiler.Compile([]rune(`打印 这;`))
	require.Error(t, err)
}

func TestCompileSyntaxErrorReportsLineAndLexeme(t *testing.T) {
	_, err := compiler.Compile([]rune("打印 1\n打印 2;"))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "[line 2]"))
	require.Contains(t, err.Error(), "Error at '打印'")
}

func TestCompileTooManyParameters(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("功能 f(")
	for i := 0; i < 256; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("a" + strconv.Itoa(i))
	}
	sb.WriteString(") {}")
	_, err := compiler.Compile([]rune(sb.String()))
	require.Error(t, err)
	require.Contains(t, err.Error(), "255 parameters")
}
