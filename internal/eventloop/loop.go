package eventloop

import (
	"log/slog"
)

// ControlFlow tells the native event pump whether to keep waiting for events
// or to stop.
type ControlFlow int

const (
	// Wait blocks until the next native event arrives. Steady state.
	Wait ControlFlow = iota
	// Exit ends the loop. Terminal; there is no way back to Wait.
	Exit
)

// String returns the string representation of the control flow.
func (f ControlFlow) String() string {
	switch f {
	case Wait:
		return "wait"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// Kind identifies an event delivered by the native platform.
type Kind int

const (
	// KindInit is delivered once, before any other event.
	KindInit Kind = iota
	// KindCloseRequested means the window (or the process) was asked to close.
	KindCloseRequested
	// KindMenuSelected carries the identity of a chosen application menu item.
	KindMenuSelected
	// KindIPCMessage carries a message posted by page script.
	KindIPCMessage
	// KindOther covers native events the shell does not act on.
	KindOther
)

// String returns the string representation of the event kind.
func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindCloseRequested:
		return "close_requested"
	case KindMenuSelected:
		return "menu_selected"
	case KindIPCMessage:
		return "ipc_message"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Event is a single native event.
type Event struct {
	Kind    Kind
	MenuID  string // KindMenuSelected
	Message string // KindIPCMessage
}

func Init() Event { return Event{Kind: KindInit} }

func CloseRequested() Event { return Event{Kind: KindCloseRequested} }

func MenuSelected(id string) Event { return Event{Kind: KindMenuSelected, MenuID: id} }

func IPCMessage(msg string) Event { return Event{Kind: KindIPCMessage, Message: msg} }

// Handler reacts to events. Handlers cannot change the control flow; only
// KindCloseRequested ends the loop.
type Handler interface {
	HandleEvent(ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev Event)

func (f HandlerFunc) HandleEvent(ev Event) { f(ev) }

// Step runs one loop iteration. The flow resets to Wait, moves to Exit on
// KindCloseRequested, and stays at Exit once there. Events arriving after Exit
// are not handed to h.
func Step(flow ControlFlow, ev Event, h Handler) ControlFlow {
	if flow == Exit {
		return Exit
	}

	next := Wait
	if ev.Kind == KindCloseRequested {
		next = Exit
	}
	if h != nil {
		h.HandleEvent(ev)
	}
	return next
}

// Loop owns the control flow for the life of the process. It is not safe for
// concurrent use; the platform calls Dispatch from its UI thread only.
type Loop struct {
	flow    ControlFlow
	handler Handler
	logger  *slog.Logger
	started bool
}

// New creates a loop in the Wait state.
func New(h Handler, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		flow:    Wait,
		handler: h,
		logger:  logger,
	}
}

// Dispatch feeds one native event through the loop and returns the resulting
// control flow.
func (l *Loop) Dispatch(ev Event) ControlFlow {
	if ev.Kind == KindInit {
		if l.started {
			return l.flow
		}
		l.started = true
		l.logger.Info("event loop started")
	}

	prev := l.flow
	l.flow = Step(l.flow, ev, l.handler)
	if prev != l.flow {
		l.logger.Debug("control flow changed", "from", prev, "to", l.flow, "event", ev.Kind)
	}
	return l.flow
}

// Flow returns the current control flow.
func (l *Loop) Flow() ControlFlow {
	return l.flow
}

// Exited reports whether the loop reached its terminal state.
func (l *Loop) Exited() bool {
	return l.flow == Exit
}
