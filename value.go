package twee

import "strconv"

// ValueKind discriminates the Value tagged union (§3/§4.4).
type ValueKind int

const (
	ValInt ValueKind = iota
	ValBool
	ValString
)

// Value is the VM's runtime value type: a closed sum of Int/Bool/String
// with the coercion rules of §4.4. Grounded on the teacher's tagged-sum-
// with-String() idiom (value.go) and on the small closed value union
// consumed by a tree-walking-ish VM in
// _examples/other_examples/6af83eae_MongooseMoo-barn__vm-vm.go.go's
// types.Value — not on the teacher's own value.go, whose Value is a
// capture-tree node for PEG match results, a different domain.
type Value struct {
	Kind ValueKind
	I    int32
	B    bool
	S    string
}

func Int(v int32) Value    { return Value{Kind: ValInt, I: v} }
func Bool(v bool) Value    { return Value{Kind: ValBool, B: v} }
func StringVal(v string) Value { return Value{Kind: ValString, S: v} }

// AsBool coerces per §4.4: Int != 0; Bool as-is; String non-empty.
func (v Value) AsBool() bool {
	switch v.Kind {
	case ValInt:
		return v.I != 0
	case ValBool:
		return v.B
	case ValString:
		return v.S != ""
	}
	return false
}

// AsInt coerces per §4.4. Note the deliberate surprise kept from the spec:
// a String coerces to 0/1 based on emptiness, never by parsing its
// contents as a number (design note "Value coercion surprises").
func (v Value) AsInt() int32 {
	switch v.Kind {
	case ValInt:
		return v.I
	case ValBool:
		if v.B {
			return 1
		}
		return 0
	case ValString:
		if v.S == "" {
			return 0
		}
		return 1
	}
	return 0
}

// AsString coerces per §4.4. This implements the corrected mapping
// (Int->decimal, Bool->"true"/"false") rather than the source's apparently
// swapped behaviour (§9 open question #1).
func (v Value) AsString() string {
	switch v.Kind {
	case ValInt:
		return strconv.Itoa(int(v.I))
	case ValBool:
		if v.B {
			return "true"
		}
		return "false"
	case ValString:
		return v.S
	}
	return ""
}

func (v Value) TypeName() string {
	switch v.Kind {
	case ValInt:
		return "int"
	case ValBool:
		return "bool"
	case ValString:
		return "string"
	}
	return "unknown"
}
