package logsvc

import (
	"io"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/user"
)

var (
	exitFunc        = os.Exit // mockable
	defaultExitFunc = os.Exit
)

// RollbarLogger reports to Rollbar (when a token is configured) and writes logfmt lines.
type RollbarLogger struct {
	kit     kitlog.Logger
	rollbar bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(w io.Writer, conf *core.Config) *RollbarLogger {
	kit := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	kit = kitlog.With(kit, "ts", kitlog.DefaultTimestampUTC, "app", conf.AppName)
	if conf.Debug {
		kit = level.NewFilter(kit, level.AllowDebug())
	} else {
		kit = level.NewFilter(kit, level.AllowInfo())
	}

	enabled := conf.RollbarToken != "" && !conf.TestMode
	rollbar.SetEnabled(enabled)
	if enabled {
		rollbar.SetToken(conf.RollbarToken)
		rollbar.SetEnvironment(conf.Env)
		rollbar.SetServerHost(conf.Server.Host)
		rollbar.SetCodeVersion(conf.Build)
		rollbar.SetStackTracer(errors.StackTracer)
	}
	return &RollbarLogger{kit: kit, rollbar: enabled}
}

// Kit exposes the underlying go-kit logger (e.g. for the HTTP server's error log).
func (l RollbarLogger) Kit() kitlog.Logger {
	return l.kit
}

// With returns a logger adding keyvals to every line.
func (l RollbarLogger) With(keyvals ...interface{}) *RollbarLogger {
	return &RollbarLogger{kit: kitlog.With(l.kit, keyvals...), rollbar: l.rollbar}
}

// prepare splits args into rollbar's (msg | error, map[string]interface{}) and logfmt key/values.
// A user.User arg sets the rollbar person.
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []interface{}) {
	var usrSet bool
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	kv := []interface{}{"msg", msg}

	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if !usrSet { // only set one User
				if l.rollbar {
					rollbar.SetPerson(a.ID, a.Username, a.Email)
				}
				kv = append(kv, "user", a.Username)
				usrSet = true
			}
		case error:
			rbArgs = append(rbArgs, a)
			kv = append(kv, "err", a.Error())
		case map[string]interface{}:
			rbArgs = append(rbArgs, a)
			for k, v := range a {
				kv = append(kv, k, v)
			}
		default:
			rbArgs = append(rbArgs, a)
			kv = append(kv, "extra", a)
		}
	}
	if !usrSet && l.rollbar {
		rollbar.ClearPerson()
	}
	return rbArgs, kv
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, kv := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Debug(rbArgs...)
	}
	_ = level.Debug(l.kit).Log(kv...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, kv := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Info(rbArgs...)
	}
	_ = level.Info(l.kit).Log(kv...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, kv := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Warning(rbArgs...)
	}
	_ = level.Warn(l.kit).Log(kv...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, kv := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Error(rbArgs...)
	}
	_ = level.Error(l.kit).Log(kv...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, kv := l.prepare(msg, args)
	if l.rollbar {
		rollbar.Critical(rbArgs...)
		rollbar.Wait()
	}
	_ = level.Error(l.kit).Log(append(kv, "fatal", true)...)
	exitFunc(1)
}

// Close flushes pending rollbar items.
func (l RollbarLogger) Close() {
	if l.rollbar {
		rollbar.Close()
	}
}
