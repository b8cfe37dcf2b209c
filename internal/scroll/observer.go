// Package scroll implements the infinite-scroll trigger: it reports when
// the last rendered item comes into view.
package scroll

// Observer watches a single target. It fires once per transition of that
// target from hidden to visible.
type Observer struct {
	target  string
	watched bool
	visible bool
	armed   bool
}

// NewObserver returns an armed observer with no target.
func NewObserver() *Observer {
	return &Observer{armed: true}
}

// Observe switches to target, releasing whatever was observed before.
// Observing the current target again keeps its visibility state, so a
// re-render does not fire a second time.
func (o *Observer) Observe(target string) {
	if o.watched && o.target == target {
		return
	}
	o.target = target
	o.watched = target != ""
	o.visible = false
}

// Release stops observing without choosing a new target.
func (o *Observer) Release() {
	o.target = ""
	o.watched = false
	o.visible = false
}

// Target returns the observed target, if any.
func (o *Observer) Target() (string, bool) {
	return o.target, o.watched
}

// Disarm suppresses firing, e.g. while the first page is loading.
func (o *Observer) Disarm() {
	o.armed = false
}

// Arm re-enables firing.
func (o *Observer) Arm() {
	o.armed = true
}

func (o *Observer) Armed() bool {
	return o.armed
}

// Notify records the visibility of target and reports whether this is an
// intersection event the caller should act on. Notifications about any
// target other than the observed one are ignored.
func (o *Observer) Notify(target string, visible bool) bool {
	if !o.watched || target != o.target {
		return false
	}
	wasVisible := o.visible
	o.visible = visible
	return o.armed && visible && !wasVisible
}
