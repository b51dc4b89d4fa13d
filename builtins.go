package twee

import (
	"fmt"
	"math/rand"
	"time"
)

// builtinFunc implements one built-in callable. Exactly one exists per
// §4.4: random. It receives already-evaluated arguments and the VM they
// were evaluated against, so it can reach the injectable Rand source.
type builtinFunc func(vm *VM, args []Value) (Value, error)

var builtins = map[string]builtinFunc{
	"random": builtinRandom,
}

// builtinRandom implements random(min, max): both arguments must be Int;
// returns an Int uniform in [min, max] inclusive, swapping the bounds if
// min > max (§4.4). The Rand source is injectable on VM (SPEC_FULL §4) so
// tests can seed it deterministically.
func builtinRandom(vm *VM, args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, fmt.Errorf("random() expects 2 arguments, got %d", len(args))
	}
	lo, hi := args[0], args[1]
	if lo.Kind != ValInt {
		return Value{}, fmt.Errorf("random() expects int arguments, got %s for first argument", lo.TypeName())
	}
	if hi.Kind != ValInt {
		return Value{}, fmt.Errorf("random() expects int arguments, got %s for second argument", hi.TypeName())
	}
	min, max := lo.I, hi.I
	if min > max {
		min, max = max, min
	}
	span := int64(max) - int64(min) + 1
	n := vm.rand().Int63n(span)
	return Int(int32(int64(min) + n)), nil
}

// newDefaultRand seeds a package-default source from the wall clock, used
// when NewVM isn't given an explicit one.
func newDefaultRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
