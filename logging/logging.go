/*package logging contains the global log mode of mdnorm and thin wrappers
around glog which respect it.
*/
package logging

import (
	"flag"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/golang/glog"
)

type Flag int

const (
	Nil Flag = iota
	Performance
	Debug
)

func (f Flag) String() string {
	switch f {
	case Nil:
		return "Nil"
	case Performance:
		return "Performance"
	case Debug:
		return "Debug"
	}
	panic("Impossible")
}

// This is handled this way so that GlobalConfig doesn't need to be literally
// every function in the project.
var (
	Mode Flag = Nil
)

// ParseFlag converts the name of a log mode into a Flag. The empty string
// is Nil.
func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nil", "none":
		return Nil, nil
	case "performance":
		return Performance, nil
	case "debug":
		return Debug, nil
	}
	return Nil, fmt.Errorf("The LogMode '%s' is not recognized. Use "+
		"'Nil', 'Performance', or 'Debug'.", s)
}

// Init sets the global log mode and sends glog's output to stderr instead
// of to files in a temporary directory.
func Init(mode Flag) {
	Mode = mode
	if f := flag.Lookup("logtostderr"); f != nil {
		f.Value.Set("true")
	}
}

// Warnf logs a recoverable problem. Warnings are always written.
func Warnf(format string, args ...interface{}) {
	glog.WarningDepth(1, fmt.Sprintf(format, args...))
}

// Performancef logs timing and memory information if the mode is
// Performance or Debug.
func Performancef(format string, args ...interface{}) {
	if Mode >= Performance {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}

// Debugf logs information which is only interesting while debugging. It is
// written in Debug mode or when glog's verbosity is at least 2.
func Debugf(format string, args ...interface{}) {
	if Mode == Debug {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	} else {
		glog.V(2).Infof(format, args...)
	}
}

// Flush writes any buffered log entries.
func Flush() { glog.Flush() }

// Timer measures elapsed wall-clock time.
type Timer struct {
	start, lap time.Time
}

// NewTimer starts a Timer.
func NewTimer() *Timer {
	now := time.Now()
	return &Timer{start: now, lap: now}
}

// Lap returns the time since the last call to Lap, or since the Timer was
// started.
func (t *Timer) Lap() time.Duration {
	now := time.Now()
	dt := now.Sub(t.lap)
	t.lap = now
	return dt
}

// Total returns the time since the Timer was started.
func (t *Timer) Total() time.Duration { return time.Since(t.start) }

// MemString returns a string containing various statistics on the current
// memory usage of mdnorm.
func MemString() string {
	ms := runtime.MemStats{}
	runtime.ReadMemStats(&ms)
	return fmt.Sprintf(
		"Alloc - %d MB; Sys - %d MB Integrated - %d MB",
		ms.Alloc>>20, ms.Sys>>20, ms.TotalAlloc>>20,
	)
}
