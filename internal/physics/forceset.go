package physics

import "fmt"

// ForceName identifies a slot in a ForceSet.
type ForceName int

const (
	ForceGravity ForceName = iota
	ForceBounce
	ForceWindX
	ForceWindY

	numForces
)

var forceNames = [numForces]string{
	ForceGravity: "gravity",
	ForceBounce:  "bounce",
	ForceWindX:   "wind_x",
	ForceWindY:   "wind_y",
}

func (n ForceName) String() string {
	if n < 0 || n >= numForces {
		return fmt.Sprintf("ForceName(%d)", int(n))
	}
	return forceNames[n]
}

// ParseForceName maps a wire name such as "wind_x" to its ForceName.
func ParseForceName(s string) (ForceName, bool) {
	for i, name := range forceNames {
		if name == s {
			return ForceName(i), true
		}
	}
	return 0, false
}

// ForceSet holds at most one force per name and applies them in the order
// they were first registered.
type ForceSet struct {
	slots [numForces]Force
	order []ForceName
}

// Set registers f under name. Replacing an existing force keeps its
// position in the application order.
func (fs *ForceSet) Set(name ForceName, f Force) {
	if name < 0 || name >= numForces {
		panic(fmt.Sprintf("physics: invalid force name %d", int(name)))
	}
	if fs.slots[name] == nil {
		fs.order = append(fs.order, name)
	}
	fs.slots[name] = f
}

// Get returns the force registered under name, or nil.
func (fs *ForceSet) Get(name ForceName) Force {
	if name < 0 || name >= numForces {
		return nil
	}
	return fs.slots[name]
}

// Remove unregisters name. It reports whether a force was removed.
func (fs *ForceSet) Remove(name ForceName) bool {
	if fs.Get(name) == nil {
		return false
	}
	fs.slots[name] = nil
	for i, n := range fs.order {
		if n == name {
			fs.order = append(fs.order[:i], fs.order[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the registered names in application order.
func (fs *ForceSet) Names() []ForceName {
	out := make([]ForceName, len(fs.order))
	copy(out, fs.order)
	return out
}

// Len returns the number of registered forces.
func (fs *ForceSet) Len() int { return len(fs.order) }

func (fs *ForceSet) apply(b *Body, s Signals) {
	for _, name := range fs.order {
		fs.slots[name].Apply(b, s)
	}
}
