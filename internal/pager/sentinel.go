package pager

// Bounds is the half-open range of rows [Top, Bottom) currently inside the viewport.
type Bounds struct {
	Top    int
	Bottom int
}

// Observer reports when a target row enters the viewport grown by a root margin.
//
// The threshold is zero: any overlap counts as visible.
type Observer struct {
	margin   int
	notify   func()
	gen      uint64
	target   int
	attached bool
	visible  bool
}

// Handle is a scoped observation returned by [Observer.Observe].
type Handle struct {
	o   *Observer
	gen uint64
}

// NewObserver creates an observer with the given root margin. notify may be nil.
func NewObserver(margin int, notify func()) *Observer {
	if margin < 0 {
		margin = 0
	}
	return &Observer{margin: margin, notify: notify}
}

// Observe detaches any current observation and starts watching target.
//
// A fresh observation has not seen the target yet, so the next [Observer.Update] reports it if it is
// already visible.
func (o *Observer) Observe(target int) Handle {
	o.detach()
	o.gen++
	o.target = target
	o.attached = true
	return Handle{o: o, gen: o.gen}
}

// Release ends the observation. It is a no-op if the observation was already replaced or released.
func (h Handle) Release() {
	if h.o == nil || !h.o.attached || h.o.gen != h.gen {
		return
	}
	h.o.detach()
}

// Active reports whether the handle still owns the observer.
func (h Handle) Active() bool {
	return h.o != nil && h.o.attached && h.o.gen == h.gen
}

// Update evaluates the target against b and reports whether it just became visible.
func (o *Observer) Update(b Bounds) bool {
	if !o.attached {
		return false
	}

	in := o.target >= b.Top-o.margin && o.target < b.Bottom+o.margin
	entered := in && !o.visible
	o.visible = in

	if entered && o.notify != nil {
		o.notify()
	}
	return entered
}

// Target returns the observed row and whether an observation is active.
func (o *Observer) Target() (int, bool) {
	return o.target, o.attached
}

func (o *Observer) detach() {
	o.attached = false
	o.visible = false
}

// Sentinel keeps an [Observer] on the controller's last loaded row.
type Sentinel struct {
	ctrl   *Controller
	obs    *Observer
	handle Handle
}

// NewSentinel binds a sentinel with the given root margin to ctrl.
func NewSentinel(ctrl *Controller, margin int) *Sentinel {
	return &Sentinel{ctrl: ctrl, obs: NewObserver(margin, nil)}
}

// Attach re-targets the observation at the last loaded row.
//
// Call it whenever the rendered rows or the loading flag change; the previous observation is
// released first.
func (s *Sentinel) Attach() {
	s.handle.Release()
	if last := s.ctrl.Len() - 1; last >= 0 {
		s.handle = s.obs.Observe(last)
	}
}

// Check feeds the viewport to the observer and returns the next page request when the last row
// became visible while the controller is idle.
func (s *Sentinel) Check(b Bounds) *Request {
	if !s.obs.Update(b) || s.ctrl.Loading() {
		return nil
	}
	return s.ctrl.Dispatch(Advance{})
}

// Close releases the observation.
func (s *Sentinel) Close() {
	s.handle.Release()
}
