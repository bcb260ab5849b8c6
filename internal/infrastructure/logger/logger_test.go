package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("writes to file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "farm.log")
		log, err := New(Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)
		log.Info("hello")
		require.NoError(t, log.Sync())
		assert.FileExists(t, path)
	})

	t.Run("tees extra core", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		log, err := New(Config{Level: "info", Output: "stderr"}, WithCore(core), WithFields(zap.String("service", "rst")))
		require.NoError(t, err)
		log.Info("cost recorded")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "rst", logs.All()[0].ContextMap()["service"])
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	core, logs := observer.New(zapcore.DebugLevel)
	ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))

	FromContext(ctx).Info("inside")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(RequestIDKey, "abc"); c.Next() })
	r.Use(Recovery(base), GinMiddleware(base))
	r.GET("/ok", func(c *gin.Context) {
		FromContext(c.Request.Context()).Debug("handler")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	tests := []struct {
		path   string
		status int
		level  zapcore.Level
		msg    string
	}{
		{"/ok", http.StatusOK, zapcore.InfoLevel, "HTTP Request"},
		{"/missing", http.StatusNotFound, zapcore.WarnLevel, "HTTP Request"},
		{"/panic", http.StatusInternalServerError, zapcore.ErrorLevel, "Panic recovered"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			logs.TakeAll()
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)

			found := logs.FilterMessage(tt.msg).All()
			require.NotEmpty(t, found)
			assert.Equal(t, tt.level, found[0].Level)
			assert.Equal(t, "abc", found[0].ContextMap()["request_id"])
		})
	}
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, 100*time.Millisecond)
	fc := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	gl.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	gl.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "SQL error", entries[0].Message)
	assert.Equal(t, "Slow SQL", entries[1].Message)
	assert.Equal(t, "SQL", entries[2].Message)

	silent := gl.LogMode(gormlogger.Silent)
	logs.TakeAll()
	silent.Trace(context.Background(), time.Now(), fc, errors.New("ignored"))
	assert.Zero(t, logs.Len())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
}
