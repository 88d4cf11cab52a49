package book2pdf

// Progress receives pipeline milestones. Implementations must tolerate calls
// from a single goroutine only.
type Progress interface {
	// Discovering is called once the browser is up and the root is loading.
	Discovering(target string)
	// Start announces how many artifacts will be attempted, cover included.
	Start(total int)
	// Advance marks one artifact as attempted, whether or not it succeeded.
	Advance(label string)
	// Finish is called once rendering is over.
	Finish()
}

type nopProgress struct{}

func (nopProgress) Discovering(string) {}
func (nopProgress) Start(int)          {}
func (nopProgress) Advance(string)     {}
func (nopProgress) Finish()            {}
