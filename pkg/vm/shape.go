package vm

// maxSharedShapeKeys bounds transition chains. Objects growing beyond it move
// to an unshared dictionary shape that is mutated in place.
const maxSharedShapeKeys = 64

// Shape records the ordered key layout of an object. Shapes reached through
// transitions are shared between objects that added the same keys in the same
// order; attributes and values live in the object's slots, never in the shape.
type Shape struct {
	parent      *Shape
	keys        []PropertyKey // insertion order; offset == position
	index       map[PropertyKey]int
	transitions map[PropertyKey]*Shape
	dictionary  bool
	version     uint32 // bumped on any layout change
}

func newRootShape() *Shape {
	return &Shape{
		index:       make(map[PropertyKey]int),
		transitions: make(map[PropertyKey]*Shape),
	}
}

// Len returns the number of keys in the layout.
func (s *Shape) Len() int {
	return len(s.keys)
}

// IsDictionary reports whether the shape is unshared.
func (s *Shape) IsDictionary() bool {
	return s.dictionary
}

func (s *Shape) lookup(key PropertyKey) (int, bool) {
	off, ok := s.index[key]
	return off, ok
}

// withKey returns the shape obtained by appending key. The caller must have
// checked the key is absent.
func (s *Shape) withKey(key PropertyKey) *Shape {
	if s.dictionary {
		s.index[key] = len(s.keys)
		s.keys = append(s.keys, key)
		s.version++
		return s
	}
	if len(s.keys) >= maxSharedShapeKeys {
		return s.toDictionary().withKey(key)
	}
	if next, ok := s.transitions[key]; ok {
		return next
	}
	keys := make([]PropertyKey, len(s.keys)+1)
	copy(keys, s.keys)
	keys[len(s.keys)] = key
	index := make(map[PropertyKey]int, len(keys))
	for k, off := range s.index {
		index[k] = off
	}
	index[key] = len(s.keys)
	next := &Shape{
		parent:      s,
		keys:        keys,
		index:       index,
		transitions: make(map[PropertyKey]*Shape),
		version:     s.version + 1,
	}
	s.transitions[key] = next
	return next
}

// withoutKey returns an unshared shape with key removed; later offsets shift down by one.
func (s *Shape) withoutKey(key PropertyKey) *Shape {
	removed, ok := s.index[key]
	if !ok {
		return s
	}
	d := s
	if !s.dictionary {
		d = s.toDictionary()
	}
	d.keys = append(d.keys[:removed], d.keys[removed+1:]...)
	delete(d.index, key)
	for k, off := range d.index {
		if off > removed {
			d.index[k] = off - 1
		}
	}
	d.version++
	return d
}

func (s *Shape) toDictionary() *Shape {
	keys := make([]PropertyKey, len(s.keys))
	copy(keys, s.keys)
	index := make(map[PropertyKey]int, len(s.index))
	for k, off := range s.index {
		index[k] = off
	}
	return &Shape{
		parent:     s,
		keys:       keys,
		index:      index,
		dictionary: true,
		version:    s.version + 1,
	}
}
