package platform

import (
	"errors"
	"fmt"
	"unicode/utf16"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// Platform is the runtime a DEC-encoded text was produced on.
// Each one hashes passwords differently.
type Platform int

const (
	Windows Platform = iota
	Mono
)

var emptyHashes = [...]uint16{
	Windows: hashWindows(nil),
	Mono:    hashMono(nil),
}

// Members returns all known platforms in the order they are tried.
func Members() []Platform {
	return []Platform{Windows, Mono}
}

func Parse(name string) (Platform, error) {
	for _, p := range Members() {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w '%s'", ErrUnknownPlatform, name)
}

func (p Platform) Valid() bool {
	return p == Windows || p == Mono
}

func (p Platform) String() string {
	switch p {
	case Windows:
		return "windows"
	case Mono:
		return "mono"
	}
	return fmt.Sprintf("platform(%d)", int(p))
}

// Hash computes the platform's string hash of text.
// The text is hashed as a sequence of UTF-16 code units.
func (p Platform) Hash(text string) uint16 {
	units := utf16.Encode([]rune(text))
	switch p {
	case Windows:
		return hashWindows(units)
	case Mono:
		return hashMono(units)
	}
	panic(fmt.Errorf("%w: %d", ErrUnknownPlatform, int(p)))
}

// EmptyHash is the hash of the empty string, i.e. the "no password" key.
func (p Platform) EmptyHash() uint16 {
	if !p.Valid() {
		panic(fmt.Errorf("%w: %d", ErrUnknownPlatform, int(p)))
	}
	return emptyHashes[p]
}

func mix(v int32) int32 {
	// signed shift right is intentional
	return (v << 5) + v + (v >> 27)
}

func hashWindows(units []uint16) uint16 {
	var v1, v2 int32 = 0x15051505, 0x15051505
	i, length := 0, len(units)
	for length > 2 {
		v1 = mix(v1) ^ (int32(units[i]) + int32(units[i+1])<<16)
		var fourth int32
		if length > 3 {
			fourth = int32(units[i+3])
		}
		v2 = mix(v2) ^ (int32(units[i+2]) + fourth<<16)
		i += 4
		length -= 4
	}
	if length > 0 {
		var second int32
		if length > 1 {
			second = int32(units[i+1])
		}
		v1 = mix(v1) ^ (int32(units[i]) + second<<16)
	}
	return uint16(v1 + v2*0x5D588B65)
}

func hashMono(units []uint16) uint16 {
	var v int32
	for _, u := range units {
		v = (v << 5) - v + int32(u)
	}
	return uint16(v)
}
