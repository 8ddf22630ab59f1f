// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer holds one secret in memory that is locked against swapping,
// excluded from core dumps, and zeroed on close. The backing memory is
// allocated via mmap outside the Go heap.
//
// A Buffer must not be copied after creation. After Close, any access
// to its contents panics.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	length int
	closed bool
}

// New allocates a locked, dump-excluded buffer of the given size.
// The caller must Close it when the secret is no longer needed.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}

	// Pin the pages so the secret never reaches swap.
	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	return &Buffer{
		data:   data,
		length: size,
	}, nil
}

// NewFromBytes copies source into a locked buffer and zeros source in
// place, so the caller's slice no longer holds the secret.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}

	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// Bytes returns the secret data. The slice points directly into the
// mmap region — do not retain it past the Buffer's lifetime. Panics if
// the buffer has been closed.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data[:b.length]
}

// Reader returns a reader over the secret, for wiring to a child
// process's stdin. The reader is only valid while the buffer is open.
//
// The vault unlock and the agent add-identity operations both consume
// their secret on stdin; this is the one sanctioned path for a secret
// to leave the buffer.
func (b *Buffer) Reader() io.Reader {
	return bytes.NewReader(b.Bytes())
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// Close zeros the contents and releases the mapping. Idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.data)

	var firstError error
	if err := unix.Munlock(b.data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(b.data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}

	b.data = nil
	return firstError
}

// Zero wipes a byte slice in place. Use it on any transient copy of
// secret material that cannot live in a Buffer.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
