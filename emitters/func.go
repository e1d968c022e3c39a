package emitters

import "github.com/willibrandon/logsink/core"

// FuncEmitter adapts plain functions to core.Emitter.
type FuncEmitter struct {
	log   func(*core.SinkMessage)
	close func() error
}

// Func returns an emitter that calls fn for every record.
func Func(fn func(*core.SinkMessage)) *FuncEmitter {
	return &FuncEmitter{log: fn}
}

// OnClose sets a function to run when the emitter is closed.
func (f *FuncEmitter) OnClose(fn func() error) *FuncEmitter {
	f.close = fn
	return f
}

// Log calls the wrapped function.
func (f *FuncEmitter) Log(msg *core.SinkMessage) {
	if f.log != nil {
		f.log(msg)
	}
}

// Close runs the OnClose function, if any.
func (f *FuncEmitter) Close() error {
	if f.close == nil {
		return nil
	}
	return f.close()
}
