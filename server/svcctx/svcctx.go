// Copyright (C) 2026 Christian Rößner
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package svcctx provides the root context of the process. It is cancelled on SIGINT or SIGTERM, so that a lookup
// in progress is aborted when the user interrupts the command. The cancel cause tells which signal it was.
package svcctx

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrInterrupted matches the cancel cause of a context that was stopped by a signal.
var ErrInterrupted = errors.New("interrupted")

// SignalError is the cancel cause set when a signal arrives.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return "interrupted by signal " + e.Signal.String()
}

func (e *SignalError) Is(target error) bool {
	return target == ErrInterrupted
}

var (
	once   sync.Once
	root   context.Context
	cancel context.CancelCauseFunc
)

func initSvcCtx() {
	once.Do(func() {
		root, cancel = WithSignals(context.Background(), os.Interrupt, syscall.SIGTERM)
	})
}

// Get returns the root context, initializing it on first use.
func Get() context.Context {
	initSvcCtx()

	return root
}

// GetCtxWithCancel returns the root context and its cancel function. Calling the cancel function also stops the
// signal handling.
func GetCtxWithCancel() (context.Context, context.CancelFunc) {
	initSvcCtx()

	return root, func() { cancel(nil) }
}

// WithSignals returns a context that is cancelled with a *SignalError as cause once one of sigs arrives.
func WithSignals(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelCauseFunc) {
	ctx, cancelCause := context.WithCancelCause(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, sigs...)

	go func() {
		defer signal.Stop(signals)

		select {
		case sig := <-signals:
			cancelCause(&SignalError{Signal: sig})
		case <-ctx.Done():
		}
	}()

	return ctx, cancelCause
}
