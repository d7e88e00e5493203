package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 0, exitCode(fmt.Errorf("serve: %w", context.Canceled)))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 1, exitCode(context.DeadlineExceeded))
}

// stubProcess swaps the process hooks for the duration of a test.
func stubProcess(t *testing.T) (code *int, written map[string]string) {
	t.Helper()
	origExit, origWrite := osExit, osWriteFile
	t.Cleanup(func() { osExit, osWriteFile = origExit, origWrite })

	c := -1
	code = &c
	written = make(map[string]string)
	osExit = func(n int) { *code = n }
	osWriteFile = func(name string, data []byte, _ os.FileMode) error {
		written[name] = string(data)
		return nil
	}
	return code, written
}

func TestHandlePanic_WritesLog(t *testing.T) {
	code, written := stubProcess(t)

	func() {
		defer handlePanic()
		panic("kaboom")
	}()

	assert.Equal(t, 2, *code)
	require.Contains(t, written, panicLogFile)
	assert.True(t, strings.HasPrefix(written[panicLogFile], "panic: kaboom"))
}

func TestHandlePanic_NoPanic(t *testing.T) {
	code, written := stubProcess(t)
	func() {
		defer handlePanic()
	}()
	assert.Equal(t, -1, *code)
	assert.Empty(t, written)
}

func TestMain_PropagatesExitCode(t *testing.T) {
	code, _ := stubProcess(t)
	origExecute := execute
	t.Cleanup(func() { execute = origExecute })

	execute = func(ctx context.Context) error { return errors.New("bad flag") }
	main()
	assert.Equal(t, 1, *code)

	execute = func(ctx context.Context) error { return context.Canceled }
	main()
	assert.Equal(t, 0, *code)
}
