package namedfile

import (
	"errors"
	"strconv"
	"strings"
)

// ByteRange is a half-open window [Start, Start+Length) over a resource of a
// known total size. Start+Length never exceeds the size it was parsed against.
type ByteRange struct {
	Start  int64
	Length int64
}

var ErrUnsatisfiableRange = errors.New("unsatisfiable byte range")

// ParseRange interprets a Range header value against a resource of the given
// size. Only a single byte range is honored, so multi-range requests fail with
// ErrUnsatisfiableRange just as malformed or out-of-bounds ones do.
func ParseRange(header string, size int64) (ByteRange, error) {
	const unit = "bytes="

	if !strings.HasPrefix(header, unit) {
		return ByteRange{}, ErrUnsatisfiableRange
	}

	spec := strings.TrimSpace(header[len(unit):])
	if len(spec) == 0 || strings.IndexByte(spec, ',') != -1 {
		return ByteRange{}, ErrUnsatisfiableRange
	}

	dash := strings.IndexByte(spec, '-')
	if dash == -1 {
		return ByteRange{}, ErrUnsatisfiableRange
	}

	first, last := strings.TrimSpace(spec[:dash]), strings.TrimSpace(spec[dash+1:])

	if len(first) == 0 {
		// the suffix form requests the last n bytes
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return ByteRange{}, ErrUnsatisfiableRange
		}

		if n > size {
			n = size
		}

		return ByteRange{Start: size - n, Length: n}, nil
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 || start >= size {
		return ByteRange{}, ErrUnsatisfiableRange
	}

	if len(last) == 0 {
		return ByteRange{Start: start, Length: size - start}, nil
	}

	end, err := strconv.ParseInt(last, 10, 64)
	if err != nil || end < start {
		return ByteRange{}, ErrUnsatisfiableRange
	}

	if end >= size {
		end = size - 1
	}

	return ByteRange{Start: start, Length: end - start + 1}, nil
}
