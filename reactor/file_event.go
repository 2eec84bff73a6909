// File: reactor/file_event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-kv/api"
)

// FileEvent is a registered readiness callback.
type FileEvent struct {
	fd       int
	mask     Mask
	proc     FileProc
	finalize FinalizeProc
	next     *FileEvent
}

// FD returns the watched descriptor.
func (fe *FileEvent) FD() int { return fe.fd }

// Mask returns the registered interest mask.
func (fe *FileEvent) Mask() Mask { return fe.mask }

// CreateFileEvent registers proc for readiness of fd on mask. The event is
// prepended to the registry. Registering the same (fd, mask) twice keeps both,
// but the fd is cleared after its first delivery in a pass, so the newer
// registration shadows the older one until it is deleted.
func (r *Reactor) CreateFileEvent(fd int, mask Mask, proc FileProc, finalize FinalizeProc) (*FileEvent, error) {
	if fd < 0 || mask&allMask == 0 || mask&^allMask != 0 || proc == nil {
		return nil, api.ErrInvalidArgument.
			WithContext("fd", fd).
			WithContext("mask", mask.String())
	}
	if limit, ok := r.poller.(interface{ MaxFD() int }); ok && fd >= limit.MaxFD() {
		return nil, api.ErrInvalidArgument.
			WithContext("fd", fd).
			WithContext("max_fd", limit.MaxFD())
	}

	fe := &FileEvent{
		fd:       fd,
		mask:     mask,
		proc:     proc,
		finalize: finalize,
		next:     r.fileEvents,
	}
	r.fileEvents = fe
	return fe, nil
}

// DeleteFileEvent removes the first event registered on exactly (fd, mask)
// and runs its finalizer. It is a no-op if there is none.
func (r *Reactor) DeleteFileEvent(fd int, mask Mask) {
	var prev *FileEvent
	for fe := r.fileEvents; fe != nil; fe = fe.next {
		if fe.fd != fd || fe.mask != mask {
			prev = fe
			continue
		}
		if prev == nil {
			r.fileEvents = fe.next
		} else {
			prev.next = fe.next
		}
		if fe.finalize != nil {
			fe.finalize(r)
		}
		return
	}
}

// AddFileEvent registers a handler bound to a typed context.
func AddFileEvent[C any](
	r *Reactor,
	fd int,
	mask Mask,
	proc func(r *Reactor, fd int, ctx C, mask Mask),
	ctx C,
	finalize func(r *Reactor, ctx C),
) (*FileEvent, error) {
	if proc == nil {
		return nil, api.ErrInvalidArgument.WithContext("fd", fd)
	}
	var fin FinalizeProc
	if finalize != nil {
		fin = func(r *Reactor) { finalize(r, ctx) }
	}
	return r.CreateFileEvent(fd, mask, func(r *Reactor, fd int, m Mask) {
		proc(r, fd, ctx, m)
	}, fin)
}

// processFileEvents delivers readiness recorded in r.set. The list head is
// re-read after every callback since callbacks may mutate the registry, and
// a delivered fd is cleared so it fires once per pass.
func (r *Reactor) processFileEvents() int {
	processed := 0
	fe := r.fileEvents
	for fe != nil {
		fd := fe.fd
		if fd >= len(r.set) {
			fe = fe.next
			continue
		}
		signaled := r.set[fd] & fe.mask
		if signaled == 0 {
			fe = fe.next
			continue
		}

		r.callFile(fe, signaled)
		r.set[fd] = 0
		processed++
		fe = r.fileEvents
	}
	r.stats.FileEventsProcessed += uint64(processed)
	return processed
}

func (r *Reactor) callFile(fe *FileEvent, mask Mask) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("file event handler panicked",
				zap.Int("fd", fe.fd),
				zap.Stringer("mask", mask),
				zap.Any("panic", p))
		}
	}()
	fe.proc(r, fe.fd, mask)
}
