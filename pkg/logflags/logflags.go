// Package logflags configures the single diagnostic entry point
// cmd/gdbindex uses to report a fatal build error. The library package
// pkg/gdbindex never imports this package: it only returns errors.
package logflags

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetLevel(logrus.DebugLevel)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		base.SetOutput(colorable.NewColorableStderr())
		base.SetFormatter(&logrus.TextFormatter{ForceColors: true, DisableTimestamp: true})
	} else {
		base.SetOutput(colorable.NewNonColorable(os.Stderr))
		base.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	}
}

// Logger returns the preconfigured entry every fatal diagnostic is
// printed through.
func Logger() *logrus.Entry {
	return base.WithField("subsystem", "gdb-index")
}
