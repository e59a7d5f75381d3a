package cli

import (
	"io"
	"strings"

	"github.com/labstack/gommon/log"
)

const logHeader = `{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`

// newLogger builds the process logger shared by echo and the services.
func newLogger(level string, out io.Writer) *log.Logger {
	l := log.New("storefront")
	l.SetHeader(logHeader)
	l.SetLevel(parseLevel(level))
	if out != nil {
		l.SetOutput(out)
	}
	return l
}

func parseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
