// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package migrations holds the PostgreSQL schema as embedded SQL files.
package migrations

import "embed"

// FS contains the golang-migrate up/down files.
//
//go:embed *.sql
var FS embed.FS
