package models

// StreamEventType tags the variants of a StreamEvent.
type StreamEventType string

const (
	EventThinking StreamEventType = "thinking" // free-text status, never answer content
	EventToken    StreamEventType = "token"    // one generated text fragment
	EventDone     StreamEventType = "done"     // terminal, successful turn
	EventError    StreamEventType = "error"    // terminal, human-readable cause
)

// StreamEvent is one frame of the outbound chat stream. Every turn emits
// zero or more thinking/token events followed by exactly one of done or
// error. Concatenating all token contents in emission order yields the
// assistant message persisted for the turn.
type StreamEvent struct {
	Type    StreamEventType `json:"type"`
	Content string          `json:"content"`
}

func ThinkingEvent(text string) StreamEvent {
	return StreamEvent{Type: EventThinking, Content: text}
}

func TokenEvent(text string) StreamEvent {
	return StreamEvent{Type: EventToken, Content: text}
}

func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone, Content: ""}
}

func ErrorEvent(text string) StreamEvent {
	return StreamEvent{Type: EventError, Content: text}
}

// IsTerminal reports whether the event ends its stream.
func (e StreamEvent) IsTerminal() bool {
	return e.Type == EventDone || e.Type == EventError
}
