// Package cos provides the common low-level error types shared by the
// three cores: a not-found sentinel type and a bounded accumulator
// used wherever a pass needs to keep going after the first failure.
// Adapted from AIStore's cmn/cos/err.go, trimmed to the subset
// that generalizes (the syscall/URL/DNS classifiers in AIStore
// belong to a network-facing daemon this module does not run).
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
	"os"
	ratomic "sync/atomic"
	"sync"

	"github.com/NVIDIA/wlancore/internal/cmn/debug"
	"github.com/NVIDIA/wlancore/internal/nlog"
)

type (
	ErrNotFound struct {
		what string
	}
	// Errs accumulates up to maxErrs distinct errors; used by
	// validation and matching passes that must report everything
	// they found rather than stopping at the first problem.
	Errs struct {
		errs []error
		cnt  int64
		mu   sync.Mutex
	}
)

func NewErrNotFound(format string, a ...any) *ErrNotFound {
	return &ErrNotFound{fmt.Sprintf(format, a...)}
}

func (e *ErrNotFound) Error() string { return e.what + " does not exist" }

func IsErrNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

const maxErrs = 64

func (e *Errs) Add(err error) {
	debug.Assert(err != nil)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
		ratomic.StoreInt64(&e.cnt, int64(len(e.errs)))
	}
}

func (e *Errs) Cnt() int { return int(ratomic.LoadInt64(&e.cnt)) }

func (e *Errs) All() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]error, len(e.errs))
	copy(out, e.errs)
	return out
}

func (e *Errs) JoinErr() (cnt int, err error) {
	if cnt = e.Cnt(); cnt > 0 {
		e.mu.Lock()
		err = errors.Join(e.errs...)
		e.mu.Unlock()
	}
	return
}

func (e *Errs) Error() (s string) {
	cnt := e.Cnt()
	if cnt == 0 {
		return ""
	}
	e.mu.Lock()
	first := e.errs[0]
	e.mu.Unlock()
	if cnt > 1 {
		return fmt.Sprintf("%v (and %d more error(s))", first, cnt-1)
	}
	return first.Error()
}

//
// abnormal termination, used by cmd/wlanctl only
//

const fatalPrefix = "FATAL ERROR: "

func ExitLogf(f string, a ...any) {
	msg := fmt.Sprintf(fatalPrefix+f, a...)
	nlog.Errorf("%s", msg)
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
