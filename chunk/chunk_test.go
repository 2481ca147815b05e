package chunk

import "testing"

func TestValueEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil equals nil", Nil(), Nil(), true},
		{"bools by value, equal", Bool(true), Bool(true), true},
		{"bools by value, unequal", Bool(true), Bool(false), false},
		{"numbers by ==", Number(1), Number(1), true},
		{"numbers unequal", Number(1), Number(2), false},
		{"different kinds never equal", Number(0), Bool(false), false},
		{"nil vs number", Nil(), Number(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueEqualityNaN(t *testing.T) {
	nan := Number(nan())
	if nan.Equal(nan) {
		t.Error("NaN should not equal itself, per IEEE-754")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestObjectEqualityByHandle(t *testing.T) {
	a := &ObjString{Chars: "foo", Hash: FNV1a32("foo")}
	b := &ObjString{Chars: "foo", Hash: FNV1a32("foo")}

	if Obj(a).Equal(Obj(b)) {
		t.Error("two distinct handles with equal content must not compare equal without interning")
	}
	if !Obj(a).Equal(Obj(a)) {
		t.Error("a handle must equal itself")
	}
}

func TestIsFalsey(t *testing.T) {
	falsey := []Value{Nil(), Bool(false)}
	truthy := []Value{Bool(true), Number(0), Obj(&ObjString{Chars: ""})}

	for _, v := range falsey {
		if !v.IsFalsey() {
			t.Errorf("%v should be falsey", v)
		}
	}
	for _, v := range truthy {
		if v.IsFalsey() {
			t.Errorf("%v should be truthy", v)
		}
	}
}

func TestChunkCodeLinesInvariant(t *testing.T) {
	c := New()
	c.Write(byte(OpReturn), 1)
	c.Write(byte(OpConstant), 2)
	c.Write(7, 2)

	if len(c.Code) != len(c.Lines) {
		t.Fatalf("code/lines length mismatch: %d vs %d", len(c.Code), len(c.Lines))
	}
}

func TestChunkAddConstantReturnsIndex(t *testing.T) {
	c := New()
	i0 := c.AddConstant(Number(1))
	i1 := c.AddConstant(Number(2))
	if i0 != 0 || i1 != 1 {
		t.Errorf("got indices %d, %d, want 0, 1", i0, i1)
	}
	if !c.Constants[0].Equal(Number(1)) || !c.Constants[1].Equal(Number(2)) {
		t.Error("constants pool does not hold the added values in order")
	}
}

func TestOpCodeOperandBytes(t *testing.T) {
	tests := []struct {
		op   OpCode
		want int
	}{
		{OpConstant, 1}, {OpGetLocal, 1}, {OpSetGlobal, 1},
		{OpJump, 2}, {OpJumpIfFalse, 2}, {OpLoop, 2},
		{OpReturn, 0}, {OpPop, 0}, {OpAdd, 0},
	}
	for _, tt := range tests {
		if got := tt.op.OperandBytes(); got != tt.want {
			t.Errorf("%s.OperandBytes() = %d, want %d", tt.op, got, tt.want)
		}
	}
}
