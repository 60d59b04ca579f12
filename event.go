package debugstore

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind tags an event as a point event, a duration start, or a duration end.
// It's fixed at construction.
type Kind int

const (
	// KindPoint is an instantaneous event with no duration and no
	// correlating id.
	KindPoint Kind = iota

	// KindDurationStart opens a span. It carries a name and a nonzero id.
	KindDurationStart

	// KindDurationEnd closes the span sharing its id. It carries no name; the
	// id alone correlates it to its start.
	KindDurationEnd
)

// String returns the kind in the form used by the JSON encoding.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindDurationStart:
		return "duration-start"
	case KindDurationEnd:
		return "duration-end"
	default:
		return "invalid"
	}
}

// Attr is a single key=value attribute attached to an event. Attribute order
// is preserved, and duplicate keys are permitted.
type Attr struct {
	Key   string
	Value string
}

// Event is the value recorded by a store. Point events have id zero;
// duration starts and ends share a nonzero generator-issued id. Events may be
// retained for an indeterminate length of time and read concurrently by
// multiple goroutines, so once constructed they are expected to be immutable.
type Event struct {
	ID    uint64    // correlates a duration start with its end, 0 for point events
	Name  string    // empty on duration ends
	When  time.Time // captured at call time, not adjustable
	Kind  Kind
	Attrs []Attr // ordered, duplicates permitted
}

// String renders the compact wire form of the event, as embedded in a
// snapshot:
//
//	ID:<id>,T:<unix-ms>[,N:<name>][,D:<k>=<v>;<k>=<v>;...]
//
// The name section is omitted when the event has no name, and the data
// section is omitted when it has no attributes.
func (ev Event) String() string {
	var sb strings.Builder
	sb.WriteString("ID:")
	sb.WriteString(strconv.FormatUint(ev.ID, 10))
	sb.WriteString(",T:")
	sb.WriteString(strconv.FormatInt(ev.When.UnixMilli(), 10))
	if ev.Name != "" {
		sb.WriteString(",N:")
		sb.WriteString(ev.Name)
	}
	if len(ev.Attrs) > 0 {
		sb.WriteString(",D:")
		for i, a := range ev.Attrs {
			if i > 0 {
				sb.WriteByte(';')
			}
			sb.WriteString(a.Key)
			sb.WriteByte('=')
			sb.WriteString(a.Value)
		}
	}
	return sb.String()
}

// MarshalJSON implements json.Marshaler for the event.
func (ev Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonEventFrom(ev))
}

// UnmarshalJSON implements json.Unmarshaler for the event.
func (ev *Event) UnmarshalJSON(data []byte) error {
	var jev jsonEvent
	if err := json.Unmarshal(data, &jev); err != nil {
		return err
	}
	jev.writeTo(ev)
	return nil
}

type jsonEvent struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name,omitempty"`
	When  time.Time  `json:"when"`
	Kind  string     `json:"kind"`
	Attrs []jsonAttr `json:"attrs,omitempty"`
}

type jsonAttr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func jsonEventFrom(ev Event) jsonEvent {
	jev := jsonEvent{
		ID:   ev.ID,
		Name: ev.Name,
		When: ev.When,
		Kind: ev.Kind.String(),
	}
	for _, a := range ev.Attrs {
		jev.Attrs = append(jev.Attrs, jsonAttr(a))
	}
	return jev
}

func (jev *jsonEvent) writeTo(ev *Event) {
	ev.ID = jev.ID
	ev.Name = jev.Name
	ev.When = jev.When
	ev.Kind = parseKind(jev.Kind)
	ev.Attrs = nil
	for _, a := range jev.Attrs {
		ev.Attrs = append(ev.Attrs, Attr(a))
	}
}

func parseKind(s string) Kind {
	switch s {
	case "point":
		return KindPoint
	case "duration-start":
		return KindDurationStart
	case "duration-end":
		return KindDurationEnd
	default:
		return Kind(-1)
	}
}
