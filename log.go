package ptar

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log is used for diagnostic output across the package. It discards
// output by default; cmd/ptar wires it to stdout when -v is set.
var Log = logrus.New()

func init() {
	Log.SetOutput(io.Discard)
}
