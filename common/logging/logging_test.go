package logging

import (
	"bytes"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"
)

func TestJSONLogger(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	logger := (&Logger{logger: log.NewJSONLogger(&buf)}).With("module", "binding/dispatch")
	logger.Info("dispatched", "entrypoint", "get_fish", "attempt", 3)

	const expected = `{"attempt":3,"entrypoint":"get_fish","level":"info","module":"binding/dispatch","msg":"dispatched"}` + "\n"
	require.Equal(expected, buf.String())
}

func TestLevelFiltering(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	logger := &Logger{logger: log.NewJSONLogger(&buf)}
	logger.level = LevelWarn

	logger.Debug("dropped")
	logger.Info("dropped")
	require.Empty(buf.String())

	logger.Warn("kept")
	require.Contains(buf.String(), `"msg":"kept"`)
}

func TestModuleLevels(t *testing.T) {
	require := require.New(t)

	b := logBackend{
		defaultLevel: LevelError,
		moduleLevels: map[string]Level{
			"binding":           LevelInfo,
			"binding/reconcile": LevelDebug,
		},
	}

	l := &Logger{module: "binding/reconcile"}
	b.setupLogLevelLocked(l)
	require.Equal(LevelDebug, l.level)

	l = &Logger{module: "binding/dispatch"}
	b.setupLogLevelLocked(l)
	require.Equal(LevelInfo, l.level)

	l = &Logger{module: "facade"}
	b.setupLogLevelLocked(l)
	require.Equal(LevelError, l.level)
}

func TestParseLevelAndFormat(t *testing.T) {
	require := require.New(t)

	var lvl Level
	require.NoError(lvl.Set("debug"))
	require.Equal(LevelDebug, lvl)
	require.Error(lvl.Set("verbose"))

	var f Format
	require.NoError(f.Set("json"))
	require.Equal(FmtJSON, f)
	require.Error(f.Set("xml"))
}
