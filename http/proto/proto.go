package proto

type Protocol uint8

const (
	Unknown Protocol = 0
	HTTP10  Protocol = 1 << iota
	HTTP11
	HTTP2

	HTTP1 = HTTP10 | HTTP11
)

func (p Protocol) String() string {
	lut := [...]string{HTTP10: "HTTP/1.0", HTTP11: "HTTP/1.1", HTTP2: "HTTP/2"}
	if int(p) >= len(lut) {
		return ""
	}

	return lut[p]
}

// Multiplexed tells whether independent request/response pairs may interleave on a
// single connection of the protocol.
func (p Protocol) Multiplexed() bool {
	return p == HTTP2
}

func Parse(major, minor uint8) Protocol {
	switch {
	case major == 1 && minor == 1:
		return HTTP11
	case major == 1 && minor == 0:
		return HTTP10
	case major == 2 && minor == 0:
		return HTTP2
	default:
		return Unknown
	}
}
