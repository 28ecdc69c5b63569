package registry

import (
	"sort"
	"sync"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

const numShards = 16

type profileShard struct {
	mu       sync.Mutex
	profiles map[string]*domain.DeviceProfile
}

// ProfileRegistry owns the device profiles. Updates to one address are
// serialized by its shard lock; distinct shards proceed in parallel.
type ProfileRegistry struct {
	shards []*profileShard
	ssids  *SSIDIndex
}

// NewProfileRegistry creates an empty sharded registry.
func NewProfileRegistry() *ProfileRegistry {
	r := &ProfileRegistry{
		shards: make([]*profileShard, numShards),
		ssids:  NewSSIDIndex(),
	}
	for i := 0; i < numShards; i++ {
		r.shards[i] = &profileShard{profiles: make(map[string]*domain.DeviceProfile)}
	}
	return r
}

func (r *ProfileRegistry) getShard(address string) *profileShard {
	hash := uint32(0)
	for i := 0; i < len(address); i++ {
		hash = hash*31 + uint32(address[i])
	}
	return r.shards[hash%uint32(len(r.shards))]
}

// SSIDs returns the registry's SSID index.
func (r *ProfileRegistry) SSIDs() *SSIDIndex {
	return r.ssids
}

// WithProfile runs fn on the profile for address, creating it on first use,
// while holding the address's shard lock. fn must not call back into the
// registry. The SSID index trust flag is synced from the profile afterwards.
func (r *ProfileRegistry) WithProfile(address string, fn func(p *domain.DeviceProfile, created bool)) {
	shard := r.getShard(address)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	p, ok := shard.profiles[address]
	if !ok {
		p = domain.NewDeviceProfile(address)
		shard.profiles[address] = p
	}

	fn(p, !ok)
	r.ssids.SetTrusted(address, p.IsBaseline())
}

// Get returns a copy of the profile for address.
func (r *ProfileRegistry) Get(address string) (domain.DeviceProfile, bool) {
	shard := r.getShard(address)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	p, ok := shard.profiles[address]
	if !ok {
		return domain.DeviceProfile{}, false
	}
	return p.Clone(), true
}

// All returns copies of every profile, ordered by address.
func (r *ProfileRegistry) All() []domain.DeviceProfile {
	var out []domain.DeviceProfile
	for _, shard := range r.shards {
		shard.mu.Lock()
		for _, p := range shard.profiles {
			out = append(out, p.Clone())
		}
		shard.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Count returns the number of tracked profiles.
func (r *ProfileRegistry) Count() int {
	n := 0
	for _, shard := range r.shards {
		shard.mu.Lock()
		n += len(shard.profiles)
		shard.mu.Unlock()
	}
	return n
}

// Learned returns every baseline profile as a learned network, ordered by address.
func (r *ProfileRegistry) Learned() []domain.LearnedNetwork {
	var out []domain.LearnedNetwork
	for _, p := range r.All() {
		if p.IsBaseline() {
			out = append(out, domain.LearnedNetwork{SSID: p.SSID, Address: p.Address})
		}
	}
	return out
}

// Clear drops every profile and the SSID index.
func (r *ProfileRegistry) Clear() {
	for _, shard := range r.shards {
		shard.mu.Lock()
	}
	for _, shard := range r.shards {
		shard.profiles = make(map[string]*domain.DeviceProfile)
	}
	r.ssids.Clear()
	for _, shard := range r.shards {
		shard.mu.Unlock()
	}
}
