package utils

import (
	"io"
	"sync"
)

type flushable interface {
	Flush() error
}

// FlushingWriter forwards writes to the wrapped writer and flushes it after
// each write when the writer supports flushing, so pipeline progress stays
// visible through buffered outputs.
type FlushingWriter struct {
	writer  io.Writer
	flusher flushable
	mutex   sync.Mutex
}

// NewFlushingWriter wraps the provided writer. Wrapping an existing
// FlushingWriter returns it unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if existingWriter, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return existingWriter
	}

	flushingWriter := &FlushingWriter{writer: writer}
	if flusher, supportsFlush := writer.(flushable); supportsFlush {
		flushingWriter.flusher = flusher
	}
	return flushingWriter
}

// Write delegates to the underlying writer and flushes it when possible.
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
