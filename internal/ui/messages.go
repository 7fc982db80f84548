package ui

// loopMsg carries a callback posted by the list controller. It runs inside
// Update so every list mutation happens on the program's event loop.
type loopMsg struct {
	fn func()
}

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	what string
	err  error
}

// clearStatusMsg clears a transient status message
type clearStatusMsg struct{}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
