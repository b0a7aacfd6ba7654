package main

import (
	"bytes"
	"io"
)

func newReaderFor(data []byte) io.Reader {
	return bytes.NewReader(data)
}
