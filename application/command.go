package application

import "strings"

const (
	zoneMarker    = "/zone/"
	commandMarker = "/command"

	// CommandBufferSize bounds the payload copy. The longest legal token is
	// "OFF"; anything that does not fit in CommandBufferSize-1 bytes is
	// truncated, not rejected up front.
	CommandBufferSize = 8
)

// Command is one validated zone command. It is produced from a single inbound
// message and consumed immediately, never stored.
type Command struct {
	Zone int
	On   bool
}

// ParseCommand classifies an inbound message. It returns the command and true
// for a well-formed zone command, and false for everything else. Unrelated or
// malformed traffic is a silent no-op; the function has no side effects and
// no error path.
//
// The zone number is the run of decimal digits immediately following the
// "/zone/" marker. No digits parses as zone 0, which is then rejected by the
// range check like any other out-of-range zone.
func ParseCommand(topic string, payload []byte) (Command, bool) {
	zi := strings.Index(topic, zoneMarker)
	if zi < 0 {
		return Command{}, false
	}
	rest := topic[zi+len(zoneMarker):]
	if !strings.Contains(rest, commandMarker) {
		return Command{}, false
	}

	zone := 0
	for i := 0; i < len(rest) && rest[i] >= '0' && rest[i] <= '9'; i++ {
		zone = zone*10 + int(rest[i]-'0')
		if zone > NumZones {
			// Can only grow from here; reject without scanning the rest.
			return Command{}, false
		}
	}
	if zone < 1 {
		return Command{}, false
	}

	var buf [CommandBufferSize]byte
	n := copy(buf[:CommandBufferSize-1], payload)
	msg := string(buf[:n])

	switch {
	case msg == "1" || strings.EqualFold(msg, "ON"):
		return Command{Zone: zone, On: true}, true
	case msg == "0" || strings.EqualFold(msg, "OFF"):
		return Command{Zone: zone, On: false}, true
	}
	return Command{}, false
}
