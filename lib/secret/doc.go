// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds sensitive material — the vault master password
// and the session token — in memory that is locked against swapping,
// excluded from core dumps, and zeroed on close.
//
// Buffer allocates outside the Go heap via mmap(MAP_ANONYMOUS), pins
// the pages with mlock, and marks them MADV_DONTDUMP. The garbage
// collector never sees the region, so it cannot copy or relocate the
// secret, and Close wipes it deterministically.
//
// Key exports:
//
//   - [Buffer] — the locked region, with [Buffer.Reader] for piping a
//     secret to a child process's stdin
//   - [NewFromBytes] — take ownership of secret bytes, zeroing the source
//   - [FromEnv] — capture an inherited secret (BW_SESSION) at startup
//   - [Zero] — wipe a byte slice in place
package secret
