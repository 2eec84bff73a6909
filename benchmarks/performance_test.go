// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-kv components.

package benchmarks

import (
	"strconv"
	"testing"
	"time"

	"github.com/momentics/hioload-kv/control"
	"github.com/momentics/hioload-kv/dict"
	"github.com/momentics/hioload-kv/reactor"
	"github.com/momentics/hioload-kv/server"
)

type idlePoller struct{}

func (idlePoller) Wait(set []reactor.Mask, _ time.Duration) (int, error) {
	clear(set)
	return 0, nil
}

func (idlePoller) Close() error { return nil }

func keys(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "key:" + strconv.Itoa(i)
	}
	return out
}

// BenchmarkDictAdd measures inserts including incremental growth.
func BenchmarkDictAdd(b *testing.B) {
	ks := keys(1 << 16)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := dict.New(dict.HeapStrings[struct{}](), struct{}{})
		for _, k := range ks {
			_ = d.Add(k, k)
		}
	}
}

// BenchmarkDictFind measures lookups on a populated table.
func BenchmarkDictFind(b *testing.B) {
	ks := keys(1 << 16)
	d := dict.New(dict.HeapStrings[struct{}](), struct{}{})
	for _, k := range ks {
		_ = d.Add(k, k)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if d.Find(ks[i&(len(ks)-1)]) == nil {
			b.Fatal("missing key")
		}
	}
}

// BenchmarkDictRandomEntry measures sampling on a populated table.
func BenchmarkDictRandomEntry(b *testing.B) {
	d := dict.New(dict.IntKeys[int, struct{}](), struct{}{})
	for i := 0; i < 1<<14; i++ {
		_ = d.Add(i, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.RandomEntry()
	}
}

// BenchmarkReactorPass measures one non-blocking pass over many file events.
func BenchmarkReactorPass(b *testing.B) {
	r, err := reactor.New(reactor.WithPoller(idlePoller{}))
	if err != nil {
		b.Fatal(err)
	}
	defer r.Close()
	for fd := 0; fd < 512; fd++ {
		if _, err := r.CreateFileEvent(fd, reactor.Readable, func(*reactor.Reactor, int, reactor.Mask) {}, nil); err != nil {
			b.Fatal(err)
		}
	}
	r.CreateTimeEvent(60_000, func(*reactor.Reactor, int64) int { return 60_000 }, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.ProcessEvents(reactor.AllEvents, reactor.NoWait); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkServerSet measures keyspace writes with object allocation.
func BenchmarkServerSet(b *testing.B) {
	s, err := server.New(control.DefaultConfig(), server.WithPoller(idlePoller{}))
	if err != nil {
		b.Fatal(err)
	}
	defer s.Shutdown()
	db, _ := s.DB(0)
	ks := keys(1 << 12)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := db.Set(ks[i&(len(ks)-1)], s.NewStringObject("v")); err != nil {
			b.Fatal(err)
		}
	}
}
