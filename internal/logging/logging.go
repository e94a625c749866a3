package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return l
}

// SetLogLevel sets the level of Log from a string
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "info", "":
		Log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level %q (available: debug, info, warn, error)", level)
	}
	return nil
}

// Annotator prints GitHub Actions workflow commands. Errors go to Err,
// warnings and notices to Out.
type Annotator struct {
	Out io.Writer
	Err io.Writer
}

// NewAnnotator returns an Annotator writing to stdout and stderr
func NewAnnotator() *Annotator {
	return &Annotator{Out: os.Stdout, Err: os.Stderr}
}

// Error emits an ::error annotation attached to file
func (a *Annotator) Error(file, msg string) {
	if file == "" {
		fmt.Fprintf(a.Err, "::error::%s\n", escape(msg))
		return
	}
	fmt.Fprintf(a.Err, "::error file=%s::%s\n", file, escape(msg))
}

// Warning emits a ::warning annotation
func (a *Annotator) Warning(msg string) {
	fmt.Fprintf(a.Out, "::warning::%s\n", escape(msg))
}

// Notice emits a ::notice annotation
func (a *Annotator) Notice(msg string) {
	fmt.Fprintf(a.Out, "::notice::%s\n", escape(msg))
}

// escape encodes characters that terminate a workflow command
func escape(msg string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	return r.Replace(msg)
}
