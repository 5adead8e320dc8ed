package machine_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/hanyu/lang/machine"
)

func run(t *testing.T, src string) (string, machine.Result, error) {
	t.Helper()
	vm := machine.New()
	var buf bytes.Buffer
	vm.Stdout = &buf
	res, err := vm.Interpret([]rune(src))
	return buf.String(), res, err
}

func TestArithmeticAndPrint(t *testing.T) {
	out, res, err := run(t, `打印 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, machine.ResultOK, res)
	require.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, _, err := run(t, `打印 "你好, " + "世界";`)
	require.NoError(t, err)
	require.Equal(t, "你好, 世界\n", out)
}

func TestGlobalAndLocalVariables(t *testing.T) {
	out, _, err := run(t, `
		变量 x = 10;
		「
			变量 y = 20;
			打印 x + y;
		」
	`)
	require.NoError(t, err)
	require.Equal(t, "30\n", out)
}

func TestIfElse(t *testing.T) {
	out, _, err := run(t, `
		变量 x = 5;
		如果 (x 大 3) { 打印 "big"; } 否则 { 打印 "small"; }
	`)
	require.NoError(t, err)
	require.Equal(t, "big\n", out)
}

func TestWhileLoop(t *testing.T) {
	out, _, err := run(t, `
		变量 i = 0;
		变量 sum = 0;
		而 (i 小 5) { sum = sum + i; i = i + 1; }
		打印 sum;
	`)
	require.NoError(t, err)
	require.Equal(t, "10\n", out)
}

func TestForLoopWithAsciiPunctuation(t *testing.T) {
	out, _, err := run(t, `对于 (变量 i = 0; i 小 3; i++) { 如果 (i 等 1) 继续; 打印 i; }`)
	require.NoError(t, err)
	require.Equal(t, "0\n2\n", out)
}

func TestSwitchStatement(t *testing.T) {
	out, _, err := run(t, `
		变量 x = 2;
		切换 (x) {
			案例 1: 打印 "one";
			案例 2: 打印 "two";
			预设: 打印 "other";
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "two\n", out)
}

func TestSwitchFallsToDefault(t *testing.T) {
	out, _, err := run(t, `
		切换 (99) {
			案例 1: 打印 "one";
			预设: 打印 "other";
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "other\n", out)
}

func TestClosureCapturesUpvalue(t *testing.T) {
	out, _, err := run(t, `
		功能 制造计数器 () {
			变量 n = 0;
			功能 计数 () {
				n = n + 1;
				打印 n;
			}
			返回 计数;
		}
		变量 计数器 = 制造计数器();
		计数器();
		计数器();
		计数器();
	`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestTwoClosuresShareUpvalue(t *testing.T) {
	out, _, err := run(t, `
		功能 外 () {
			变量 n = 0;
			功能 加一 () { n = n + 1; }
			功能 取值 () { 打印 n; }
			加一();
			加一();
			取值();
		}
		外();
	`)
	require.NoError(t, err)
	require.Equal(t, "2\n", out)
}

func TestClassesInstancesAndMethods(t *testing.T) {
	out, _, err := run(t, `
		类 问候者 {
			初始化 (名字) { 这.名字 = 名字; }
			问候 () { 打印 "你好, " + 这.名字; }
		}
		变量 g = 问候者("小明");
		g.问候();
	`)
	require.NoError(t, err)
	require.Equal(t, "你好, 小明\n", out)
}

func TestInheritanceAndSuper(t *testing.T) {
	out, _, err := run(t, `
		类 A { 问候 () { 打印 "来自A"; } }
		类 B < A {
			问候 () {
				超.问候();
				打印 "来自B";
			}
		}
		变量 b = B();
		b.问候();
	`)
	require.NoError(t, err)
	require.Equal(t, "来自A\n来自B\n", out)
}

func TestCompoundAssignmentAndIncrement(t *testing.T) {
	out, _, err := run(t, `
		变量 x = 1;
		x += 4;
		x++;
		打印 x;
	`)
	require.NoError(t, err)
	require.Equal(t, "6\n", out)
}

func TestPropertyCompoundAssignment(t *testing.T) {
	out, _, err := run(t, `
		类 计数器 { 初始化 () { 这.n = 0; } }
		变量 c = 计数器();
		c.n += 1;
		c.n++;
		打印 c.n;
	`)
	require.NoError(t, err)
	require.Equal(t, "2\n", out)
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, res, err := run(t, `打印 不存在;`)
	require.Error(t, err)
	require.Equal(t, machine.ResultRuntimeError, res)
}

func TestCallingNonFunctionIsRuntimeError(t *testing.T) {
	_, res, err := run(t, `变量 x = 1; x();`)
	require.Error(t, err)
	require.Equal(t, machine.ResultRuntimeError, res)
}

func TestWrongArityIsRuntimeError(t *testing.T) {
	_, _, err := run(t, `功能 f (a, b) { 打印 a + b; } f(1);`)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "expected 2 arguments"))
}

func TestClockNativeReturnsNumber(t *testing.T) {
	_, res, err := run(t, `
		变量 t = clock();
		如果 (t 大 0) { 打印 "ticking"; }
	`)
	require.NoError(t, err)
	require.Equal(t, machine.ResultOK, res)
}

func TestDeeplyRecursiveCallStaysWithinFrameLimit(t *testing.T) {
	_, _, err := run(t, `
		功能 递归 (n) {
			如果 (n 小等 0) { 返回 0; }
			返回 递归(n - 1);
		}
		打印 递归(60);
	`)
	require.NoError(t, err)
}

func TestCallStackOverflowIsRuntimeError(t *testing.T) {
	_, res, err := run(t, `
		功能 无限 (n) { 返回 无限(n + 1); }
		无限(0);
	`)
	require.Error(t, err)
	require.Equal(t, machine.ResultRuntimeError, res)
}
