package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Wire prefixes of the download stream
const (
	prefixProgress = "PROGRESS_"
	prefixDone     = "DONE_"
	prefixError    = "ERROR_"
	prefixFallback = "FALLBACK_"
)

// EventKind tags a decoded stream message
type EventKind int

const (
	EventProgress EventKind = iota + 1
	EventDone
	EventError
	EventFallback
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	case EventFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Event is one message of the download stream. Only the field matching Kind is set.
type Event struct {
	Kind    EventKind
	Percent int    // EventProgress
	Token   string // EventDone
	Message string // EventError
	URL     string // EventFallback
}

// Terminal reports whether the event ends the stream
func (e Event) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventError || e.Kind == EventFallback
}

// String encodes the event back into its wire form
func (e Event) String() string {
	switch e.Kind {
	case EventProgress:
		return prefixProgress + strconv.Itoa(e.Percent)
	case EventDone:
		return prefixDone + e.Token
	case EventError:
		return prefixError + e.Message
	case EventFallback:
		return prefixFallback + e.URL
	default:
		return ""
	}
}

func ProgressEvent(percent int) Event { return Event{Kind: EventProgress, Percent: percent} }
func DoneEvent(token string) Event { return Event{Kind: EventDone, Token: token} }
func ErrorEvent(message string) Event { return Event{Kind: EventError, Message: message} }
func FallbackEvent(target string) Event { return Event{Kind: EventFallback, URL: target} }

// ParseEvent decodes one stream message
func ParseEvent(data string) (Event, error) {
	switch {
	case strings.HasPrefix(data, prefixProgress):
		raw := strings.TrimSpace(strings.TrimPrefix(data, prefixProgress))
		percent, err := strconv.Atoi(raw)
		if err != nil {
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil {
				return Event{}, fmt.Errorf("malformed progress %q: %w", raw, err)
			}
			percent = int(f)
		}
		return ProgressEvent(percent), nil
	case strings.HasPrefix(data, prefixDone):
		token := strings.TrimPrefix(data, prefixDone)
		if token == "" {
			return Event{}, fmt.Errorf("done message without file token")
		}
		return DoneEvent(token), nil
	case strings.HasPrefix(data, prefixError):
		return ErrorEvent(strings.TrimPrefix(data, prefixError)), nil
	case strings.HasPrefix(data, prefixFallback):
		return FallbackEvent(strings.TrimPrefix(data, prefixFallback)), nil
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, data)
	}
}
