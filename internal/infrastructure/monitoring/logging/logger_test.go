package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func newBufferedLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), buf, zapcore.DebugLevel)
	return NewLoggerFromCore(core), buf
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/sub/log.txt"}})
	assert.Error(t, err)
}

func TestZapLogger_WritesTypedFields(t *testing.T) {
	l, buf := newBufferedLogger(t)

	l.Warn("building ledger fetch failed",
		String("endpoint", "getBrTitleInfo"),
		Int("attempt", 2),
		Int64("total", 10),
		Float64("score", 70.75),
		Bool("fallback", true),
		Duration("elapsed", 150*time.Millisecond),
		Strings("sources", []string{"a", "b"}),
		Err(errors.New("public-data-request-failed:500")),
	)

	out := buf.String()
	assert.Contains(t, out, `"msg":"building ledger fetch failed"`)
	assert.Contains(t, out, `"endpoint":"getBrTitleInfo"`)
	assert.Contains(t, out, `"attempt":2`)
	assert.Contains(t, out, `"score":70.75`)
	assert.Contains(t, out, `"fallback":true`)
	assert.Contains(t, out, `"sources":["a","b"]`)
	assert.Contains(t, out, `"error":"public-data-request-failed:500"`)
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, buf := newBufferedLogger(t)

	child := l.Named("collector").With(String("region", "gangnam-gu"))
	child.Info("collected")

	out := buf.String()
	assert.Contains(t, out, `"logger":"collector"`)
	assert.Contains(t, out, `"region":"gangnam-gu"`)
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
	assert.Equal(t, f, Error(nil))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	assert.Equal(t, l, l.With(String("a", "b")))
	assert.Equal(t, l, l.Named("n"))
}

func TestDefault_SetAndGet(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, _ := newBufferedLogger(t)
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestFromContext(t *testing.T) {
	l, buf := newBufferedLogger(t)
	ctx := WithContext(context.Background(), l.With(String("trace_id", "trace-abc")))

	FromContext(ctx, NewNopLogger()).Info("scored")
	assert.Contains(t, buf.String(), `"trace_id":"trace-abc"`)

	fallback := NewNopLogger()
	assert.Equal(t, fallback, FromContext(context.Background(), fallback))
}

func TestSetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info"})
	require.NoError(t, err)
	zl := l.(*zapLogger)
	child := l.With(String("k", "v")).Named("child").(*zapLogger)

	assert.False(t, zl.z.Core().Enabled(zapcore.DebugLevel))
	require.True(t, SetLevel(l, "debug"))
	assert.True(t, zl.z.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, child.z.Core().Enabled(zapcore.DebugLevel))

	require.True(t, SetLevel(child, "error"))
	assert.False(t, zl.z.Core().Enabled(zapcore.WarnLevel))

	assert.False(t, SetLevel(NewNopLogger(), "debug"))
	fromCore, _ := newBufferedLogger(t)
	assert.False(t, SetLevel(fromCore, "debug"))
}

//Personal.AI order the ending
