// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the background workers of the server next to the
// HTTP transport. A Workers aggregate starts every worker concurrently and
// stops them together.
package workers

import "context"

// Worker is a long running background task. Run blocks until ctx is
// cancelled or the worker fails.
type Worker interface {
	Run(ctx context.Context) error
}
