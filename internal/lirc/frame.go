package lirc

import (
	"fmt"
	"strings"
)

// Frame is one decoded key event line from the lircd socket. The wire
// form is "<code> <repeat-count> <key-name> <key-alias> <remote-name>";
// a repeat count of "0" marks the initial press, anything else is
// keyboard-style autorepeat from a held button.
type Frame struct {
	Code   string
	Repeat bool
	Key    string
	Alias  string
}

// ParseFrame decodes a single socket line into a Frame. Trailing fields
// beyond the alias (the remote name) are ignored.
func ParseFrame(line string) (Frame, error) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 5)
	if len(fields) < 3 {
		return Frame{}, fmt.Errorf("malformed LIRC frame %q", line)
	}
	f := Frame{
		Code:   fields[0],
		Repeat: fields[1] != "0",
		Key:    fields[2],
	}
	if len(fields) > 3 {
		f.Alias = fields[3]
	}
	return f, nil
}
