package dictionary

import (
	"github.com/sergeii/decfix/pkg/dec/platform"
)

// Entry is a password known to produce a certain hash on a certain platform.
type Entry struct {
	Platform platform.Platform
	Password string
}

// Dictionary maps a 16-bit password hash to every known (platform, password) pair producing it.
// It is read-only once built.
type Dictionary struct {
	entries map[uint16][]Entry
}

// Build hashes every candidate password on every platform.
// Buckets preserve insertion order: platforms in Members order, then passwords in the given order.
func Build(passwords []string) Dictionary {
	entries := make(map[uint16][]Entry)
	seen := make(map[Entry]struct{})
	for _, p := range platform.Members() {
		for _, password := range passwords {
			entry := Entry{Platform: p, Password: password}
			if _, ok := seen[entry]; ok {
				continue
			}
			seen[entry] = struct{}{}
			hash := p.Hash(password)
			entries[hash] = append(entries[hash], entry)
		}
	}
	return Dictionary{entries: entries}
}

// Lookup returns all entries stored under the hash.
// Hashes outside of the 16-bit range are never found.
func (d Dictionary) Lookup(hash int32) []Entry {
	if hash < 0 || hash > 0xFFFF {
		return nil
	}
	return d.entries[uint16(hash)]
}

func (d Dictionary) Len() int {
	return len(d.entries)
}
