package core

// Emitter receives log records from a sink.
//
// Log is only called from the sink's worker goroutine, one call at a time,
// so implementations do not need their own locking for state touched only by Log.
// Log and Close may call the sink's Log, but never one of its blocking
// operations (Subscribe, Unsubscribe, GetMessages): those wait on the
// goroutine that is running the emitter.
type Emitter interface {
	// Log writes the record to the emitter's destination.
	Log(msg *SinkMessage)

	// Close releases the emitter. It may log through the sink that owned it.
	Close() error
}
