package join

import (
	"fmt"
	"strings"
)

// Mode selects how a join combines its two operands.
type Mode int

const (
	Bypass Mode = iota
	Connect
	Embed
	Cutout
)

var modeNames = [...]string{
	Bypass:  "Bypass",
	Connect: "Connect",
	Embed:   "Embed",
	Cutout:  "Cutout",
}

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{Bypass, Connect, Embed, Cutout}
}

func (m Mode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m >= Bypass && m <= Cutout
}

// ParseMode converts a mode name to a Mode, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return Bypass, fmt.Errorf("join: unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("join: invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
