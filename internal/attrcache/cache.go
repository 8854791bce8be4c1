// Package attrcache memoizes attribute arrays fetched from a geometry part
// for the duration of one cook pass.
//
// A Cache is not safe for concurrent use; all splits of a part share one
// cache and are processed sequentially.
package attrcache

import (
	"fmt"

	"github.com/Faultbox/meshcook/internal/geo"
	"github.com/Faultbox/meshcook/internal/logger"
	"go.uber.org/zap"
)

// State is the fetch state of one cache entry.
type State int

const (
	// NotFetched means the part has not been asked for the attribute yet.
	NotFetched State = iota
	// Fetched means the attribute exists and its values are cached.
	Fetched
	// FetchedEmpty means the part was asked and reported no such attribute.
	FetchedEmpty
)

func (s State) String() string {
	switch s {
	case NotFetched:
		return "not-fetched"
	case Fetched:
		return "fetched"
	case FetchedEmpty:
		return "fetched-empty"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// AnyOwner as a lookup owner searches Vertex, Point, Primitive then Detail.
const AnyOwner geo.Owner = -1

type key struct {
	name  string
	owner geo.Owner
	tuple int
}

type entry struct {
	state State
	data  geo.AttributeData
}

// Stats reports cache activity.
type Stats struct {
	Hits    int
	Misses  int
	Fetches int
}

// Cache is the per-part attribute memo.
type Cache struct {
	part    geo.Part
	entries map[key]entry

	stats Stats
}

// New creates an empty cache over part.
func New(part geo.Part) *Cache {
	return &Cache{
		part:    part,
		entries: make(map[key]entry),
	}
}

// Part returns the part the cache reads from.
func (c *Cache) Part() geo.Part {
	return c.part
}

// State reports the fetch state of an attribute without fetching it.
func (c *Cache) State(name string, owner geo.Owner, tuple int) State {
	return c.entries[key{name, owner, tuple}].state
}

// Get returns the attribute with the given owner, fetching it on first use.
// owner may be AnyOwner. tuple 0 keeps the stored tuple size.
func (c *Cache) Get(name string, owner geo.Owner, tuple int) (geo.AttributeData, bool) {
	k := key{name, owner, tuple}
	if e, ok := c.entries[k]; ok && e.state != NotFetched {
		c.stats.Hits++
		return e.data, e.state == Fetched
	}
	c.stats.Misses++

	var (
		data  geo.AttributeData
		found bool
	)
	if owner == AnyOwner {
		for _, o := range geo.Owners {
			if data, found = c.fetch(name, o, tuple); found {
				break
			}
		}
	} else {
		data, found = c.fetch(name, owner, tuple)
	}

	if found {
		c.entries[k] = entry{state: Fetched, data: data}
	} else {
		c.entries[k] = entry{state: FetchedEmpty}
	}
	return data, found
}

func (c *Cache) fetch(name string, owner geo.Owner, tuple int) (geo.AttributeData, bool) {
	c.stats.Fetches++
	data, ok := c.part.Attribute(geo.Query{Name: name, Owner: owner, TupleSize: tuple})
	if !ok {
		return geo.AttributeData{}, false
	}
	logger.L().Debug("attribute fetched",
		logger.Part(c.part.Name()),
		zap.String("attr", name),
		zap.Stringer("owner", data.Owner),
		zap.Int("tuple", data.TupleSize),
		zap.Int("count", data.Len()))
	return data, true
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Reset forgets every entry and zeroes the statistics.
func (c *Cache) Reset() {
	c.entries = make(map[key]entry)
	c.stats = Stats{}
}
