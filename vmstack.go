package twee

// callFrame is a pending return point pushed by CmdCallPassage and popped
// by CmdReturnPassage (§3 CallStack). Grounded on the StackFrame shape of
// _examples/other_examples/6af83eae_MongooseMoo-barn__vm-vm.go.go, reduced
// from a register-VM activation record (locals, base pointer, exception
// stack) down to the two fields a tree-walking passage interpreter needs.
type callFrame struct {
	Passage string
	IP      int
}

// maxCallDepth bounds the call stack (§3 "implementation may cap at a
// small depth, e.g., 10"). Exceeding it is a fatal VM error, the same taxon
// as an empty-stack Return.
const maxCallDepth = 10

type callStack struct {
	frames []callFrame
}

func (s *callStack) push(f callFrame) bool {
	if len(s.frames) >= maxCallDepth {
		return false
	}
	s.frames = append(s.frames, f)
	return true
}

func (s *callStack) pop() (callFrame, bool) {
	if len(s.frames) == 0 {
		return callFrame{}, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

func (s *callStack) depth() int { return len(s.frames) }
