package worker

import (
	"bufio"
	"io"
	"os"

	"github.com/core-tools/resburner/pkg/errors"
	"github.com/core-tools/resburner/pkg/workload"
)

// Writes and reads move through a fixed block so large disk loads do not
// inflate the worker's memory footprint.
const ioBlockSize = 64 * 1024

// diskWriter appends filler bytes to a single truncated file
type diskWriter struct {
	path     string
	file     *os.File
	buffered *bufio.Writer // nil when unbuffered
	filler   []byte
	written  int64
}

func openDiskWriter(path string, bufferSize int) (*diskWriter, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.NewIOError("failed to open disk write destination", err).WithContext("path", path)
	}

	filler := make([]byte, ioBlockSize)
	for i := range filler {
		filler[i] = 'x'
	}

	w := &diskWriter{
		path:   path,
		file:   file,
		filler: filler,
	}
	switch {
	case bufferSize == workload.DiskBufferDefault:
		w.buffered = bufio.NewWriter(file)
	case bufferSize > 0:
		w.buffered = bufio.NewWriterSize(file, bufferSize)
	}
	return w, nil
}

func (w *diskWriter) out() io.Writer {
	if w.buffered != nil {
		return w.buffered
	}
	return w.file
}

// write appends exactly n bytes
func (w *diskWriter) write(n int64) error {
	out := w.out()
	for n > 0 {
		block := w.filler
		if int64(len(block)) > n {
			block = block[:n]
		}
		written, err := out.Write(block)
		w.written += int64(written)
		n -= int64(written)
		if err != nil {
			return errors.NewIOError("failed to write to disk", err).WithContext("path", w.path)
		}
	}
	return nil
}

func (w *diskWriter) Close() error {
	var flushErr error
	if w.buffered != nil {
		flushErr = w.buffered.Flush()
	}
	closeErr := w.file.Close()
	if flushErr != nil {
		return errors.NewIOError("failed to flush disk write destination", flushErr).WithContext("path", w.path)
	}
	if closeErr != nil {
		return errors.NewIOError("failed to close disk write destination", closeErr).WithContext("path", w.path)
	}
	return nil
}

// diskReader reads from a file, rewinding to its start whenever the end is
// reached before a read quota is met.
type diskReader struct {
	path     string
	file     *os.File
	buffered *bufio.Reader // nil when unbuffered
	scratch  []byte
	read     int64
	rewinds  int
}

func openDiskReader(path string, bufferSize int) (*diskReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError("failed to open disk read source", err).WithContext("path", path)
	}

	r := &diskReader{
		path:    path,
		file:    file,
		scratch: make([]byte, ioBlockSize),
	}
	switch {
	case bufferSize == workload.DiskBufferDefault:
		r.buffered = bufio.NewReader(file)
	case bufferSize > 0:
		r.buffered = bufio.NewReaderSize(file, bufferSize)
	}
	return r, nil
}

func (r *diskReader) in() io.Reader {
	if r.buffered != nil {
		return r.buffered
	}
	return r.file
}

// readQuota reads exactly n bytes, wrapping around at end of file
func (r *diskReader) readQuota(n int64) error {
	rewound := false
	for n > 0 {
		block := r.scratch
		if int64(len(block)) > n {
			block = block[:n]
		}
		got, err := r.in().Read(block)
		if got > 0 {
			r.read += int64(got)
			n -= int64(got)
			rewound = false
		}
		if err != nil && err != io.EOF {
			return errors.NewIOError("failed to read from disk", err).WithContext("path", r.path)
		}
		if got > 0 {
			continue
		}

		// Nothing read: end of file
		if rewound {
			return errors.NewIOError("disk read source became empty", nil).WithContext("path", r.path)
		}
		if err := r.rewind(); err != nil {
			return err
		}
		rewound = true
	}
	return nil
}

func (r *diskReader) rewind() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return errors.NewIOError("failed to rewind disk read source", err).WithContext("path", r.path)
	}
	if r.buffered != nil {
		r.buffered.Reset(r.file)
	}
	r.rewinds++
	return nil
}

func (r *diskReader) Close() error {
	if err := r.file.Close(); err != nil {
		return errors.NewIOError("failed to close disk read source", err).WithContext("path", r.path)
	}
	return nil
}

// checkReadSource fails when path is missing, a directory, or empty
func checkReadSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewValidationError("disk read source is not accessible", err).WithContext("path", path)
	}
	if info.IsDir() {
		return errors.NewValidationError("disk read source is a directory", nil).WithContext("path", path)
	}
	if info.Size() == 0 {
		return errors.NewValidationError("disk read source is empty", nil).WithContext("path", path)
	}
	return nil
}
