package reader

// View is a top level screen.
type View int

const (
	ViewLibrary View = iota
	ViewReader
)

func (v View) String() string {
	if v == ViewReader {
		return "reader"
	}
	return "library"
}

// Router tracks which top level view is showing. The zero value shows the
// library.
type Router struct {
	view View
}

func (r *Router) Current() View {
	return r.view
}

func (r *Router) show(v View) {
	r.view = v
}
