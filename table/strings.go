package table

import "nilan/chunk"

// Strings bundles the intern table with the intrusive heap-object list it
// allocates into. Both the compiler (literals, identifier constants) and
// the VM (concatenation results) share one Strings instance so that the
// intern invariant — equal-content strings share one handle — holds
// across compile time and run time alike.
type Strings struct {
	table   *Table
	objects *chunk.ObjString // head of the intrusive list; newest first
}

// NewStrings returns an empty intern table with an empty object list.
func NewStrings() *Strings {
	return &Strings{table: New()}
}

// Objects returns the head of the intrusive object list, for VM teardown.
func (s *Strings) Objects() *chunk.ObjString { return s.objects }

// Intern returns the canonical *ObjString for chars, allocating and
// linking a new one only if content equal to chars has not been seen
// before. This is the shared implementation behind the compiler's
// copyString and the VM's takeString/concatenate paths (see open
// questions #6 in spec.md §9: both routes must intern, not just one).
func (s *Strings) Intern(chars string) *chunk.ObjString {
	hash := chunk.FNV1a32(chars)
	if existing := s.table.FindString(chars, hash); existing != nil {
		return existing
	}

	obj := &chunk.ObjString{
		Type:  chunk.ObjTypeString,
		Chars: chars,
		Hash:  hash,
		Next:  s.objects,
	}
	s.objects = obj
	s.table.Set(obj, chunk.Nil())
	return obj
}
