package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

var (
	InfoLog  *log.Logger
	ErrorLog *log.Logger
	WarnLog  *log.Logger
	DebugLog *log.Logger
	logFile  *os.File
	level    = INFO
)

const (
	INFO = iota
	DEBUG
)

// ParseLevel maps "debug" to DEBUG and everything else to INFO.
func ParseLevel(s string) int {
	if strings.EqualFold(strings.TrimSpace(s), "debug") {
		return DEBUG
	}
	return INFO
}

// InitLogger initializes the logger with console output and, when filename is
// not empty, a copy of every line appended to that file.
func InitLogger(filename string, lvl int) error {
	var out io.Writer = os.Stdout
	errOut := io.Writer(os.Stderr)

	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		logFile = f
		out = io.MultiWriter(os.Stdout, f)
		errOut = io.MultiWriter(os.Stderr, f)
	}

	setOutput(out, errOut, lvl)
	return nil
}

// SetOutput routes all levels to w. Used by tests to capture log lines.
func SetOutput(w io.Writer, lvl int) {
	setOutput(w, w, lvl)
}

func setOutput(out, errOut io.Writer, lvl int) {
	level = lvl
	InfoLog = log.New(out, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(errOut, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLog = log.New(out, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	DebugLog = log.New(out, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
}

func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Init sets up console-only loggers at INFO level.
func Init() {
	setOutput(os.Stdout, os.Stderr, INFO)
}

// calldepth makes Lshortfile report the caller of the helpers below.
const calldepth = 2

func sprintf(format string, v ...interface{}) string {
	if len(v) == 0 {
		return format
	}
	return fmt.Sprintf(format, v...)
}

func Infof(format string, v ...interface{}) {
	if InfoLog == nil {
		Init()
	}
	InfoLog.Output(calldepth, sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	if ErrorLog == nil {
		Init()
	}
	ErrorLog.Output(calldepth, sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	if WarnLog == nil {
		Init()
	}
	WarnLog.Output(calldepth, sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) {
	if level < DEBUG {
		return
	}
	if DebugLog == nil {
		Init()
	}
	DebugLog.Output(calldepth, sprintf(format, v...))
}
