package client

import (
	"fmt"
	"io"
	"net/http"

	"github.com/c2h5oh/datasize"
	"github.com/ethda/chainfront/httperr"
)

// ErrBodyTooLarge is returned when a response body exceeds the client's
// maximum response size.
type ErrBodyTooLarge struct {
	Max int64
}

var _ httperr.StatusCoder = ErrBodyTooLarge{}

func (err ErrBodyTooLarge) StatusCode() int {
	return http.StatusBadGateway
}

func (err ErrBodyTooLarge) Error() string {
	return fmt.Sprintf(
		"Response too large, maximum size allowed is %s",
		datasize.ByteSize(err.Max).HumanReadable(),
	)
}

type limitedBody struct {
	reader io.LimitedReader
	closer io.Closer
	max    int64
}

func newLimitedBody(body io.ReadCloser, max int64) *limitedBody {
	return &limitedBody{
		reader: io.LimitedReader{R: body, N: max + 1},
		closer: body,
		max:    max,
	}
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.reader.Read(p)

	if b.reader.N <= 0 {
		return n, ErrBodyTooLarge{Max: b.max}
	}

	return n, err
}

func (b *limitedBody) Close() error {
	return b.closer.Close()
}
