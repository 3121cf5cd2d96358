package ptar

// ProgressBar lets callers plug in their own progress visualization for
// the writer pool and extract worker pool; the planner reports no
// progress. A NullProgressBar is used when output isn't a terminal.
type ProgressBar interface {
	SetTotal(total int)
	Start()
	Finish()
	Add(n int) int
	Set(current int)
}

// NullProgressBar discards all progress updates.
type NullProgressBar struct{}

func (NullProgressBar) SetTotal(int) {}
func (NullProgressBar) Start()       {}
func (NullProgressBar) Finish()      {}
func (NullProgressBar) Add(int) int  { return 0 }
func (NullProgressBar) Set(int)      {}
