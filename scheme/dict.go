// Copyright © 2025 The Wisp authors

package scheme

const (
	dictMinSlots = 8

	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// hashText returns the 64-bit FNV-1a hash of s.  Symbols cache this hash
// so probe sequences never rehash the symbol text.
func hashText(s string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

type dictSlot struct {
	hash uint64
	key  string
	val  *Object
	used bool
}

// Dict is an open addressing hash table with linear probing mapping
// string keys to objects.  The slot array doubles whenever occupancy
// would exceed half capacity, which keeps probe chains short and
// guarantees probing always terminates at an empty slot.
//
// Dict stores bare object pointers and takes no part in reference
// counting; a structure embedding a Dict reports its values through its
// type's Reach hook instead.
type Dict struct {
	slots []dictSlot
	count int
}

// Len returns the number of live entries.
func (d *Dict) Len() int { return d.count }

// Get returns the value bound to key.
func (d *Dict) Get(key string) (*Object, bool) {
	return d.GetHashed(hashText(key), key)
}

// GetHashed is Get with the key hash precomputed by the caller.
func (d *Dict) GetHashed(hash uint64, key string) (*Object, bool) {
	if len(d.slots) == 0 {
		return nil, false
	}
	i := int(hash % uint64(len(d.slots)))
	for {
		s := &d.slots[i]
		if !s.used {
			return nil, false
		}
		if s.hash == hash && s.key == key {
			return s.val, true
		}
		i++
		if i == len(d.slots) {
			i = 0
		}
	}
}

// Put binds key to val, returning the previous value when the key was
// already bound.
func (d *Dict) Put(key string, val *Object) (prev *Object, found bool) {
	return d.PutHashed(hashText(key), key, val)
}

// PutHashed is Put with the key hash precomputed by the caller.
func (d *Dict) PutHashed(hash uint64, key string, val *Object) (prev *Object, found bool) {
	if 2*(d.count+1) > len(d.slots) {
		d.grow()
	}
	s := d.probe(hash, key)
	if s.used {
		prev = s.val
		s.val = val
		return prev, true
	}
	*s = dictSlot{hash: hash, key: key, val: val, used: true}
	d.count++
	return nil, false
}

// Range calls fn for every entry until fn returns false.  Iteration
// order is unspecified.
func (d *Dict) Range(fn func(key string, val *Object) bool) {
	for i := range d.slots {
		if d.slots[i].used {
			if !fn(d.slots[i].key, d.slots[i].val) {
				return
			}
		}
	}
}

// probe returns the slot holding key or the first empty slot of its
// probe chain.  The caller must have ensured spare capacity.
func (d *Dict) probe(hash uint64, key string) *dictSlot {
	i := int(hash % uint64(len(d.slots)))
	for {
		s := &d.slots[i]
		if !s.used || (s.hash == hash && s.key == key) {
			return s
		}
		i++
		if i == len(d.slots) {
			i = 0
		}
	}
}

func (d *Dict) grow() {
	n := 2 * len(d.slots)
	if n < dictMinSlots {
		n = dictMinSlots
	}
	old := d.slots
	d.slots = make([]dictSlot, n)
	for i := range old {
		if !old[i].used {
			continue
		}
		s := d.probe(old[i].hash, old[i].key)
		if s.used {
			// Two live entries with one key means the table was already
			// corrupt before the resize.
			panic("scheme: duplicate key during dict resize: " + old[i].key)
		}
		*s = old[i]
	}
}
