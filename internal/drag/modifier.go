package drag

// Modifier tracks whether the precision modifier is latched. Key-up events
// are easy to miss when focus leaves the window, so Reset is called on blur
// and focus to avoid a stuck modifier.
type Modifier struct {
	held bool
}

func (m *Modifier) Toggle() { m.held = !m.held }
func (m *Modifier) Reset() { m.held = false }
func (m *Modifier) Held() bool {
	return m.held
}
