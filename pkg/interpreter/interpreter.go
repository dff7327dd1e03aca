package interpreter

import (
	"context"
	"io"

	"fortio.org/log"
	"github.com/emirpasic/gods/stacks/arraystack"

	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/runtime"
)

// DefaultMaxCallDepth bounds nested calls unless WithMaxCallDepth overrides it.
const DefaultMaxCallDepth = 200

// Interpreter evaluates one chunk. It is not safe for concurrent use.
type Interpreter struct {
	chunk        *ast.Chunk
	memory       *runtime.Memory
	frames       *arraystack.Stack
	maxCallDepth int
	output       io.Writer
	ctx          context.Context
}

// callFrame records an active call for depth limiting and CallStack.
type callFrame struct {
	name    string
	context ast.Context
}

type Option func(*Interpreter)

// WithMaxCallDepth sets how deep calls may nest before a stack overflow error.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxCallDepth = depth
		}
	}
}

// WithOutput sets the writer host functions receive for program output.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.output = w
		}
	}
}

// New returns an interpreter for chunk with a fresh global scope.
func New(chunk *ast.Chunk, opts ...Option) *Interpreter {
	i := &Interpreter{
		chunk:        chunk,
		memory:       runtime.NewMemory(),
		frames:       arraystack.New(),
		maxCallDepth: DefaultMaxCallDepth,
		output:       io.Discard,
		ctx:          context.Background(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Define registers a global, typically a host function such as print.
func (i *Interpreter) Define(name string, value runtime.Value) {
	i.memory.Global().Define(name, value)
}

// Memory exposes the scope chain.
func (i *Interpreter) Memory() *runtime.Memory {
	return i.memory
}

// CallStack lists the active calls, innermost first.
func (i *Interpreter) CallStack() []string {
	values := i.frames.Values()
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.(callFrame).name)
	}
	return out
}

// Run executes the chunk and returns the values of its top-level return, if any.
func (i *Interpreter) Run() ([]runtime.Value, error) {
	return i.RunContext(context.Background())
}

// RunContext is Run with cancellation, checked at every loop iteration and call.
func (i *Interpreter) RunContext(ctx context.Context) ([]runtime.Value, error) {
	if i.chunk == nil || i.chunk.Block == nil {
		return nil, nil
	}
	i.ctx = ctx
	log.LogVf("run chunk %s", i.chunk.Span().Source)
	err := i.executeBlock(i.chunk.Block)
	switch sig := err.(type) {
	case nil:
		return []runtime.Value{}, nil
	case returnSignal:
		return sig.values, nil
	case breakSignal:
		return nil, diagnostics.Newf(diagnostics.Script, i.chunk.Span(), "%s", sig.Error())
	default:
		return nil, err
	}
}

// checkContext turns cancellation into a script error at ctx.
func (i *Interpreter) checkContext(at ast.Context) error {
	if err := i.ctx.Err(); err != nil {
		return diagnostics.Wrap(diagnostics.Script, at, err)
	}
	return nil
}

// trace appends node to a propagating language error. Signals pass untouched.
func trace(err error, node ast.Node) error {
	if err == nil || isSignal(err) {
		return err
	}
	if diag, ok := diagnostics.As(err); ok {
		diag.AddTrace(node.Trace())
	}
	return err
}
