// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package progress renders step progress for the provisioning
// workflow. The workflow treats the reporter as an opaque sink for
// (description, advance, total) events; this package owns all
// terminal mechanics.
//
// [Terminal] draws a transient single-line display — spinner,
// description, bar, percentage — redrawn in place and erased when the
// stage ends, so the scrollback keeps only real output. [Suspend]
// clears the display while the workflow takes interactive input (the
// master password prompt) and [Resume] restores it; the workflow
// models this as an explicit suspended state rather than ad-hoc
// start/stop calls.
//
// [Nop] is the reporter for non-terminal output (pipes, CI), where
// animated rendering would be noise.
package progress
