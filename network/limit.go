package network

import (
	"fmt"
	"io"
	"sync"
)

// DownloadLimitError reports a response body that exceeded the configured cap.
type DownloadLimitError struct {
	Limit int64
}

func (e *DownloadLimitError) Error() string {
	return fmt.Sprintf("exceeded the download limit of %d bytes", e.Limit)
}

// limitedBody watches cumulative bytes read from a response body and aborts
// the transfer once they exceed the limit while the download is still in
// flight. A transfer that finishes at or past the limit in its final read is
// left alone. The abort closes the underlying body exactly once; further
// closes are no-ops.
type limitedBody struct {
	body  io.ReadCloser
	limit int64
	size  int64 // Content-Length; -1 when unknown
	read  int64
	once  sync.Once
	err   error
}

func newLimitedBody(body io.ReadCloser, limit, size int64) *limitedBody {
	return &limitedBody{body: body, limit: limit, size: size}
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.err != nil {
		return 0, b.err
	}

	n, err := b.body.Read(p)
	b.read += int64(n)

	// err != nil covers io.EOF arriving with the final bytes: the transfer
	// is complete, so the limit no longer applies.
	if err == nil && b.read > b.limit && !b.complete() {
		b.err = &DownloadLimitError{Limit: b.limit}
		b.once.Do(func() { b.body.Close() })
		return n, b.err
	}
	return n, err
}

func (b *limitedBody) complete() bool {
	return b.size >= 0 && b.read >= b.size
}

func (b *limitedBody) Close() error {
	var err error
	b.once.Do(func() { err = b.body.Close() })
	return err
}
