package chunk

import "strconv"

// ValueKind tags the variant carried by a Value.
type ValueKind int

const (
	ValNil ValueKind = iota
	ValBool
	ValNumber
	ValObj
)

// Value is a tagged union over nil, bool, number (float64) and object
// (a handle to a heap-allocated ObjString). It is deliberately a small
// value type, copied by assignment, so the VM's stack can hold it inline
// instead of boxing every element behind an interface.
type Value struct {
	kind    ValueKind
	boolean bool
	number  float64
	obj     *ObjString
}

func Nil() Value                 { return Value{kind: ValNil} }
func Bool(b bool) Value          { return Value{kind: ValBool, boolean: b} }
func Number(n float64) Value     { return Value{kind: ValNumber, number: n} }
func Obj(o *ObjString) Value     { return Value{kind: ValObj, obj: o} }

func (v Value) IsNil() bool    { return v.kind == ValNil }
func (v Value) IsBool() bool   { return v.kind == ValBool }
func (v Value) IsNumber() bool { return v.kind == ValNumber }
func (v Value) IsObj() bool    { return v.kind == ValObj }
func (v Value) IsString() bool { return v.kind == ValObj && v.obj != nil }

func (v Value) AsBool() bool        { return v.boolean }
func (v Value) AsNumber() float64   { return v.number }
func (v Value) AsString() *ObjString { return v.obj }

// IsFalsey implements the language's truthiness rule: nil and false are
// falsey, everything else (including 0 and "") is truthy.
func (v Value) IsFalsey() bool {
	return v.kind == ValNil || (v.kind == ValBool && !v.boolean)
}

// Equal implements valuesEqual: nil=nil, booleans by value, numbers by ==
// (so NaN != NaN, per IEEE-754), objects by handle identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValNil:
		return true
	case ValBool:
		return v.boolean == o.boolean
	case ValNumber:
		return v.number == o.number
	case ValObj:
		return v.obj == o.obj
	}
	return false
}

// String renders a Value the way the `print` statement does.
func (v Value) String() string {
	switch v.kind {
	case ValNil:
		return "nil"
	case ValBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case ValNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case ValObj:
		if v.obj != nil {
			return v.obj.Chars
		}
		return "<obj>"
	}
	return "<invalid>"
}

// ObjType tags the kind of heap object. String is the only variant the
// core requires.
type ObjType int

const (
	ObjTypeString ObjType = iota
)

// ObjString is a heap-allocated string: its character content plus a
// cached FNV-1a hash used both by the intern table and by the globals
// table (which is keyed on *ObjString).
//
// Every ObjString is linked into the VM's intrusive object list at
// construction via Next; the list owns the object and is walked once on
// VM teardown.
type ObjString struct {
	Type  ObjType
	Chars string
	Hash  uint32
	Next  *ObjString
}

// FNV1a32 computes the 32-bit FNV-1a hash of s, used both to place an
// ObjString in the hash table and to short-circuit content comparison
// during interning.
func FNV1a32(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}
