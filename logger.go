package signpost

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strconv"
	"sync"
	"text/template"
	"time"
)

// Logger logs build-time diagnostics and per-request incident information.
//
// It is a leveled, template-rendered logger: a single line format is
// rendered through text/template once and reused, with a pooled buffer to
// avoid per-call allocation.
type Logger struct {
	AppName string
	Format  string
	Output  io.Writer
	Enabled bool

	template   *template.Template
	bufferPool *sync.Pool
	mutex      sync.Mutex
}

// loggerLevel is the severity of a single log line.
type loggerLevel uint8

const (
	lvlDebug loggerLevel = iota
	lvlInfo
	lvlWarn
	lvlError
)

func (l loggerLevel) String() string {
	switch l {
	case lvlDebug:
		return "DEBUG"
	case lvlInfo:
		return "INFO"
	case lvlWarn:
		return "WARN"
	case lvlError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// DefaultLogFormat is the line format used when Config.LogFormat is empty.
const DefaultLogFormat = `{"app_name":"{{.app_name}}","time":"{{.time_rfc3339}}",` +
	`"level":"{{.level}}","file":"{{.short_file}}","line":"{{.line}}"}`

// NewLogger returns a Logger writing to os.Stdout with DefaultLogFormat.
func NewLogger(appName string) *Logger {
	return &Logger{
		AppName: appName,
		Format:  DefaultLogFormat,
		Output:  os.Stdout,
		Enabled: true,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return &bytes.Buffer{}
			},
		},
	}
}

// Debug logs a DEBUG-level line built from fmt.Sprint(args...).
func (l *Logger) Debug(args ...interface{}) { l.log(lvlDebug, "", args...) }

// Debugf logs a DEBUG-level line built from fmt.Sprintf(format, args...).
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(lvlDebug, format, args...) }

// Info logs an INFO-level line built from fmt.Sprint(args...).
func (l *Logger) Info(args ...interface{}) { l.log(lvlInfo, "", args...) }

// Infof logs an INFO-level line built from fmt.Sprintf(format, args...).
func (l *Logger) Infof(format string, args ...interface{}) { l.log(lvlInfo, format, args...) }

// Warn logs a WARN-level line built from fmt.Sprint(args...).
func (l *Logger) Warn(args ...interface{}) { l.log(lvlWarn, "", args...) }

// Warnf logs a WARN-level line built from fmt.Sprintf(format, args...).
func (l *Logger) Warnf(format string, args ...interface{}) { l.log(lvlWarn, format, args...) }

// Error logs an ERROR-level line built from fmt.Sprint(args...).
func (l *Logger) Error(args ...interface{}) { l.log(lvlError, "", args...) }

// Errorf logs an ERROR-level line built from fmt.Sprintf(format, args...).
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(lvlError, format, args...) }

func (l *Logger) log(lvl loggerLevel, format string, args ...interface{}) {
	if !l.Enabled {
		return
	}

	if l.bufferPool == nil {
		l.bufferPool = &sync.Pool{
			New: func() interface{} { return &bytes.Buffer{} },
		}
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.template == nil {
		f := l.Format
		if f == "" {
			f = DefaultLogFormat
		}
		l.template = template.Must(template.New("signpost-logger").Parse(f))
	}

	message := ""
	if format == "" {
		message = fmt.Sprint(args...)
	} else {
		message = fmt.Sprintf(format, args...)
	}

	_, file, line, _ := runtime.Caller(2)

	data := map[string]interface{}{
		"app_name":     l.AppName,
		"time_rfc3339": time.Now().Format(time.RFC3339),
		"level":        lvl.String(),
		"short_file":   path.Base(file),
		"long_file":    file,
		"line":         strconv.Itoa(line),
	}

	buf := l.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer l.bufferPool.Put(buf)

	if err := l.template.Execute(buf, data); err != nil {
		return
	}

	s := buf.String()
	if i := buf.Len() - 1; i >= 0 && s[i] == '}' {
		buf.Truncate(i)
		buf.WriteByte(',')
		b, _ := json.Marshal(message)
		buf.WriteString(`"message":`)
		buf.Write(b)
		buf.WriteByte('}')
	} else {
		buf.WriteByte(' ')
		buf.WriteString(message)
	}
	buf.WriteByte('\n')

	out := l.Output
	if out == nil {
		out = os.Stdout
	}
	out.Write(buf.Bytes())
}
