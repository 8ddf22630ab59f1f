// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor provides the infrastructure for the vaultkeys doctor
// command: a series of environment health checks reported in a
// consistent format.
//
// Fixable failures carry fix closures that can be executed in --fix
// mode. The package provides:
//
//   - [Result] type with status, message, and optional fix action
//   - Constructors: [Pass], [Fail], [FailWithFix], [Warn], [Skip]
//   - [ExecuteFixes] for running fix closures
//   - [PrintChecklist] for human-readable output
//   - [BuildJSON] for machine-readable output
//
// The checks themselves (vault CLI present, agent reachable, and so
// on) live in the doctor command's package. This package provides only
// the workflow infrastructure.
package doctor
