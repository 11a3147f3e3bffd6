package notify

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/nspcc-dev/go-ordered-json"
)

const (
	// Standard is the event standard name.
	Standard = "nep297"
	// Version is the version of all relay events.
	Version = "1.0.0"
	// Prefix precedes JSON in the string form of an event.
	Prefix = "EVENT_JSON:"
)

// ErrNoPrefix is returned by Parse for lines not being events.
var ErrNoPrefix = errors.New("missing event prefix")

// Event is a single relay event.
type Event struct {
	Standard string `json:"standard"`
	Version  string `json:"version"`
	Event    string `json:"event"`
	Data     any    `json:"data"`
}

// New returns an event of the current standard and version.
func New(name string, data any) Event {
	return Event{
		Standard: Standard,
		Version:  Version,
		Event:    name,
		Data:     data,
	}
}

// MarshalData returns JSON of the event data only.
func (e Event) MarshalData() ([]byte, error) {
	return json.Marshal(e.Data)
}

// String returns prefixed JSON form of the event.
func (e Event) String() string {
	b, err := json.Marshal(e)
	if err != nil {
		return Prefix + fmt.Sprintf(`{"event":%q,"error":%q}`, e.Event, err.Error())
	}
	return Prefix + string(b)
}

// Parse decodes the string form of an event. Data is returned as
// json.RawMessage.
func Parse(s string) (Event, error) {
	body, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return Event{}, ErrNoPrefix
	}

	var raw struct {
		Standard string          `json:"standard"`
		Version  string          `json:"version"`
		Event    string          `json:"event"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if raw.Standard != Standard {
		return Event{}, fmt.Errorf("unexpected standard %q", raw.Standard)
	}

	return Event{
		Standard: raw.Standard,
		Version:  raw.Version,
		Event:    raw.Event,
		Data:     raw.Data,
	}, nil
}
