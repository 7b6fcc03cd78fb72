package logsvc

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(&buf, &core.Config{AppName: "StuHub", TestMode: true})

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("user logged in", user.User{Username: "qinlin"}, map[string]interface{}{"ip": "127.0.0.1"})
	line := buf.String()
	assert.Contains(t, line, "level=info")
	assert.Contains(t, line, `msg="user logged in"`)
	assert.Contains(t, line, "user=qinlin")
	assert.Contains(t, line, "ip=127.0.0.1")
	assert.Contains(t, line, "app=StuHub")

	buf.Reset()
	logger.Error("saving course", errors.New("boom"))
	assert.Contains(t, buf.String(), "level=error")
	assert.Contains(t, buf.String(), "err=boom")
}

func TestRollbarLogger_debug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(&buf, &core.Config{Debug: true, TestMode: true})
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "level=debug")
}

func TestRollbarLogger_fatal(t *testing.T) {
	var code int
	exitFunc = func(c int) { code = c }
	defer func() { exitFunc = defaultExitFunc }()

	var buf bytes.Buffer
	NewRollbarLogger(&buf, &core.Config{TestMode: true}).Fatal("cannot start")
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "fatal=true")
}

func TestRollbarLogger_with(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(&buf, &core.Config{TestMode: true}).With("component", "db")
	logger.Warn("slow query")
	assert.Contains(t, buf.String(), "level=warn")
	assert.Contains(t, buf.String(), "component=db")
}
