package namedfile

import (
	"io"
	"os"
)

// chunkReader streams a bounded window of a file, never reading past its end.
// Releasing the reader closes the underlying file.
type chunkReader struct {
	file      *os.File
	offset    int64
	remaining int64
}

func newChunkReader(file *os.File, window ByteRange) *chunkReader {
	return &chunkReader{
		file:      file,
		offset:    window.Start,
		remaining: window.Length,
	}
}

func (c *chunkReader) Read(p []byte) (n int, err error) {
	if c.remaining <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}

	n, err = c.file.ReadAt(p, c.offset)
	c.offset += int64(n)
	c.remaining -= int64(n)

	if err == io.EOF {
		if c.remaining > 0 {
			// the file shrank while being served
			return n, io.ErrUnexpectedEOF
		}

		err = nil
	}

	return n, err
}

func (c *chunkReader) Close() error {
	return c.file.Close()
}
