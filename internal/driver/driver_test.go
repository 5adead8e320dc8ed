package driver_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/mna/hanyu/internal/driver"
)

func stdio(in string) (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errb bytes.Buffer
	return mainer.Stdio{
		Stdin:  bytes.NewBufferString(in),
		Stdout: &out,
		Stderr: &errb,
	}, &out, &errb
}

func TestRunSuccessfulScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.语")
	require.NoError(t, os.WriteFile(path, []byte(`打印 1 + 1;`), 0o644))

	c := driver.Cmd{}
	sio, out, _ := stdio("")
	code := c.Main([]string{"hanyu", "run", path}, sio)
	require.Equal(t, mainer.Success, code)
	require.Equal(t, "2\n", out.String())
}

func TestRunCompileErrorExits65(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.语")
	require.NoError(t, os.WriteFile(path, []byte(`变量 = ;`), 0o644))

	c := driver.Cmd{}
	sio, _, errb := stdio("")
	code := c.Main([]string{"hanyu", "run", path}, sio)
	require.Equal(t, mainer.ExitCode(65), code)
	require.NotEmpty(t, errb.String())
}

func TestRunRuntimeErrorExits70(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.语")
	require.NoError(t, os.WriteFile(path, []byte(`打印 不存在;`), 0o644))

	c := driver.Cmd{}
	sio, _, errb := stdio("")
	code := c.Main([]string{"hanyu", "run", path}, sio)
	require.Equal(t, mainer.ExitCode(70), code)
	require.NotEmpty(t, errb.String())
}

func TestRunMissingFileExits64(t *testing.T) {
	c := driver.Cmd{}
	sio, _, _ := stdio("")
	code := c.Main([]string{"hanyu", "run", "/does/not/exist.语"}, sio)
	require.Equal(t, mainer.ExitCode(64), code)
}

func TestRunWrongArgCountIsUsageError(t *testing.T) {
	c := driver.Cmd{}
	sio, _, errb := stdio("")
	code := c.Main([]string{"hanyu", "run"}, sio)
	require.Equal(t, mainer.InvalidArgs, code)
	require.NotEmpty(t, errb.String())
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	c := driver.Cmd{}
	sio, _, _ := stdio("")
	code := c.Main([]string{"hanyu", "frobnicate"}, sio)
	require.Equal(t, mainer.InvalidArgs, code)
}

func TestHelpFlag(t *testing.T) {
	c := driver.Cmd{}
	sio, out, _ := stdio("")
	code := c.Main([]string{"hanyu", "--help"}, sio)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "usage: hanyu")
}

func TestReplEchoesEachLineResult(t *testing.T) {
	c := driver.Cmd{}
	sio, out, _ := stdio("打印 1 + 2;\n打印 3 + 4;\n")
	code := c.Main([]string{"hanyu", "repl"}, sio)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "3\n")
	require.Contains(t, out.String(), "7\n")
}

func TestReplContinuesAfterError(t *testing.T) {
	ctx := context.Background()
	_ = ctx // Repl stops between lines once its context is done; not exercised here

	c := driver.Cmd{}
	sio, out, errb := stdio("打印 不存在;\n打印 9;\n")
	code := c.Main([]string{"hanyu", "repl"}, sio)
	require.Equal(t, mainer.Success, code)
	require.NotEmpty(t, errb.String())
	require.Contains(t, out.String(), "9\n")
}
