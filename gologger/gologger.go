package gologger

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const ReqIDKey ctxKey = "reqID"

func init() {
	l := NewLogger()
	zerolog.DefaultContextLogger = &l
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		function := ""
		fun := runtime.FuncForPC(pc)
		if fun != nil {
			funName := fun.Name()
			slash := strings.LastIndex(funName, "/")
			if slash > 0 {
				funName = funName[slash+1:]
			}
			function = " " + funName + "()"
		}
		return file + ":" + strconv.Itoa(line) + function
	}
}

func NewLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	logger = logger.Hook(CallerHook{})

	if os.Getenv("PRETTY") == "1" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if lvl, ok := envLevel(); ok {
		zerolog.SetGlobalLevel(lvl)
	}

	return logger
}

// NewComponentLogger tags every event with the emitting component.
func NewComponentLogger(component string) zerolog.Logger {
	return NewLogger().With().Str("component", component).Logger()
}

// envLevel reads LOG_LEVEL, DEBUG=1 is shorthand for LOG_LEVEL=debug.
func envLevel() (zerolog.Level, bool) {
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(s))
		if err == nil {
			return lvl, true
		}
	}
	if os.Getenv("DEBUG") == "1" {
		return zerolog.DebugLevel, true
	}
	return zerolog.NoLevel, false
}

type CallerHook struct{}

func (h CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Caller(3)
}
