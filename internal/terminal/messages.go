package terminal

// Inbound is a control message flowing from the consumer to the session.
// Messages are delivered strictly in the order they were sent.
type Inbound interface{ inbound() }

// Stdin carries text to write to the child process as-is.
type Stdin struct {
	Text string
}

// SetSize requests a window-size change for the pseudo-terminal.
type SetSize struct {
	Rows int
	Cols int
}

// Click is a pointer press at zero-indexed grid coordinates.
type Click struct {
	X      int
	Y      int
	Button MouseButton
}

// Scroll is a wheel event at zero-indexed grid coordinates.
type Scroll struct {
	Direction ScrollDirection
	X         int
	Y         int
}

func (Stdin) inbound()   {}
func (SetSize) inbound() {}
func (Click) inbound()   {}
func (Scroll) inbound()  {}

// Outbound is a control message flowing from the session to the consumer.
type Outbound interface{ outbound() }

// Setup is emitted exactly once when the session starts. The consumer
// should respond with an initial SetSize.
type Setup struct{}

// Stdout carries decoded child output for the grid engine.
type Stdout struct {
	Text string
}

// Disconnect is emitted exactly once when the session ends. No further
// outbound messages follow it.
type Disconnect struct{}

func (Setup) outbound()      {}
func (Stdout) outbound()     {}
func (Disconnect) outbound() {}

// MouseButton identifies a pointer button.
type MouseButton int

const (
	// ButtonPrimary is the only button forwarded to the child.
	ButtonPrimary MouseButton = 1
)

// ScrollDirection identifies a wheel direction.
type ScrollDirection int

const (
	ScrollUp ScrollDirection = iota
	ScrollDown
)

// SGR wheel codes on the wire.
const (
	mouseCodeLeftClick = 0
	mouseCodeWheelUp   = 64
	mouseCodeWheelDown = 65
)
