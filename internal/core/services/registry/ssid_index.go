package registry

import "sync"

// SSIDIndex tracks which addresses broadcast each network name and which
// addresses are trusted. It takes only its own lock, so it can be consulted
// while a profile shard is held.
type SSIDIndex struct {
	members map[string][]string
	seen    map[string]map[string]struct{}
	trusted map[string]bool
	mu      sync.RWMutex
}

// NewSSIDIndex creates an empty index.
func NewSSIDIndex() *SSIDIndex {
	return &SSIDIndex{
		members: make(map[string][]string),
		seen:    make(map[string]map[string]struct{}),
		trusted: make(map[string]bool),
	}
}

// Add records that address broadcasts ssid. Empty names are not indexed.
func (si *SSIDIndex) Add(ssid, address string) {
	if ssid == "" {
		return
	}
	si.mu.Lock()
	defer si.mu.Unlock()

	set, ok := si.seen[ssid]
	if !ok {
		set = make(map[string]struct{})
		si.seen[ssid] = set
	}
	if _, dup := set[address]; dup {
		return
	}
	set[address] = struct{}{}
	si.members[ssid] = append(si.members[ssid], address)
}

// SetTrusted records whether an address is currently a learned baseline.
func (si *SSIDIndex) SetTrusted(address string, trusted bool) {
	si.mu.Lock()
	defer si.mu.Unlock()
	if trusted {
		si.trusted[address] = true
	} else {
		delete(si.trusted, address)
	}
}

// Count returns the number of addresses broadcasting ssid.
func (si *SSIDIndex) Count(ssid string) int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.members[ssid])
}

// Peers returns the other addresses broadcasting ssid, in first-seen order.
func (si *SSIDIndex) Peers(ssid, self string) []string {
	return si.filter(ssid, self, false)
}

// TrustedPeers returns the other trusted addresses broadcasting ssid.
func (si *SSIDIndex) TrustedPeers(ssid, self string) []string {
	return si.filter(ssid, self, true)
}

func (si *SSIDIndex) filter(ssid, self string, trustedOnly bool) []string {
	si.mu.RLock()
	defer si.mu.RUnlock()

	var out []string
	for _, addr := range si.members[ssid] {
		if addr == self {
			continue
		}
		if trustedOnly && !si.trusted[addr] {
			continue
		}
		out = append(out, addr)
	}
	return out
}

// Len returns the number of indexed network names.
func (si *SSIDIndex) Len() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.members)
}

// Clear wipes the index.
func (si *SSIDIndex) Clear() {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.members = make(map[string][]string)
	si.seen = make(map[string]map[string]struct{})
	si.trusted = make(map[string]bool)
}
