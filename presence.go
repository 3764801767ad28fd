package tarams

import "strconv"

// Presence is the bit flag collected by CastWithMeta.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was nil.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps JSON Pointers of output fields ("/address/city",
// "/items/0/sku") to Presence flags.
type PresenceMap map[string]Presence

// Has reports whether every bit of p is set at path.
func (pm PresenceMap) Has(path string, p Presence) bool {
	return pm[path]&p == p
}

// Decoded carries the cast record along with presence metadata.
type Decoded struct {
	Value    map[string]any
	Presence PresenceMap
}

func (pm PresenceMap) mark(path string, p Presence) {
	if pm == nil {
		return
	}
	pm[path] |= p
}

func pointerJoin(parent, key string) string {
	return parent + "/" + escapePointer(key)
}

func pointerIndex(parent string, i int) string {
	return parent + "/" + strconv.Itoa(i)
}

// escapePointer applies RFC 6901 escaping.
func escapePointer(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '~':
			out = append(out, '~', '0')
		case '/':
			out = append(out, '~', '1')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
