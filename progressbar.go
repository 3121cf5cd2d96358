package ptar

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// NewProgressBar returns a ConsoleProgressBar wrapping
// https://github.com/cheggaaa/pb, or a NullProgressBar if stderr isn't
// a terminal.
func NewProgressBar(prefix string) ProgressBar {
	if !terminal.IsTerminal(int(os.Stderr.Fd())) {
		return NullProgressBar{}
	}
	bar := pb.New(0).Prefix(prefix)
	bar.ShowCounters = true
	bar.Output = os.Stderr
	return ConsoleProgressBar{bar}
}

// ConsoleProgressBar wraps https://github.com/cheggaaa/pb and
// implements ProgressBar.
type ConsoleProgressBar struct {
	*pb.ProgressBar
}

func (p ConsoleProgressBar) SetTotal(total int) { p.ProgressBar.SetTotal(total) }
func (p ConsoleProgressBar) Set(current int)    { p.ProgressBar.Set(current) }
func (p ConsoleProgressBar) Start()             { p.ProgressBar.Start() }
