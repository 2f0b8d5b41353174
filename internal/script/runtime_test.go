package script

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, name, src string) *Chunk {
	t.Helper()
	c, err := Compile(name, src)
	require.NoError(t, err)
	return c
}

func TestRunSharesGlobals(t *testing.T) {
	r := New()
	defer r.Close()

	c := mustCompile(t, "count", `hits = (hits or 0) + 1`)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Run(c, "ctrl+shift+c"))
	}
	assert.Equal(t, "3", r.Global("hits"))
	assert.Equal(t, "", r.Global("missing"))
}

func TestRunSetsCombo(t *testing.T) {
	var out bytes.Buffer
	r := New(WithOutput(&out))
	defer r.Close()

	c := mustCompile(t, "echo", `print("fired", combo, 1)`)
	require.NoError(t, r.Run(c, "ctrl+alt+z"))
	assert.Equal(t, "fired\tctrl+alt+z\t1\n", out.String())
}

func TestKeychordLog(t *testing.T) {
	var buf bytes.Buffer
	r := New(WithLogger(zerolog.New(&buf)))
	defer r.Close()

	c := mustCompile(t, "logger", `keychord.log("hello " .. combo)`)
	require.NoError(t, r.Run(c, "f5"))
	assert.Contains(t, buf.String(), `"message":"hello f5"`)
	assert.Contains(t, buf.String(), `"script":"logger"`)
}

func TestSandboxRemovesLoaders(t *testing.T) {
	r := New()
	defer r.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "io", "os", "debug"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "", r.Global(name))
		})
	}

	c := mustCompile(t, "escape", `dofile("/etc/passwd")`)
	assert.Error(t, r.Run(c, ""))
}

func TestCompileError(t *testing.T) {
	_, err := Compile("broken", `if then`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRunError(t *testing.T) {
	r := New()
	defer r.Close()

	err := r.Run(mustCompile(t, "boom", `error("nope")`), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
	assert.NotErrorIs(t, err, ErrTimeout)

	// The state stays usable after a failed run.
	require.NoError(t, r.Run(mustCompile(t, "ok", `x = 1`), ""))
}

func TestRunTimeout(t *testing.T) {
	r := New(WithTimeout(50 * time.Millisecond))
	defer r.Close()

	err := r.Run(mustCompile(t, "spin", `while true do end`), "")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRunAfterClose(t *testing.T) {
	r := New()
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	assert.ErrorIs(t, r.Run(mustCompile(t, "x", `x = 1`), ""), ErrClosed)
	assert.Equal(t, "", r.Global("x"))
}
