package utils

import (
	"io"
	"sync"
)

type flushableWriter interface {
	Flush() error
}

// FlushingWriter serializes writes to a shared sink and flushes buffered
// sinks after every write, keeping progress lines from concurrent tasks
// intact and immediately visible.
type FlushingWriter struct {
	writer  io.Writer
	flusher flushableWriter
	mutex   sync.Mutex
}

// NewFlushingWriter wraps the provided writer. Already wrapped writers are
// returned unchanged so nested construction does not stack mutexes.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if existingWrapper, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return existingWrapper
	}

	wrapper := &FlushingWriter{writer: writer}
	if flusher, supportsFlush := writer.(flushableWriter); supportsFlush {
		wrapper.flusher = flusher
	}
	return wrapper
}

// Write delegates to the underlying writer under the mutex and flushes when
// the sink supports it.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushingWriter.flusher != nil {
		if flushError := flushingWriter.flusher.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}
