package cancellation

import (
	"math"
	"sync/atomic"
)

// DefaultTokenShards is the default number of token counter shards.
const DefaultTokenShards = 7

// tokenShard is a single counter, padded so neighbouring shards do not share
// a cache line.
type tokenShard struct {
	n atomic.Uint64
	_ [56]byte
}

// tokenSource issues unique tokens from sharded counters. Shard i issues the
// arithmetic progression i, i+S, i+2S, ... where S is the shard count, so
// shards can never collide. Shards are selected round-robin.
type tokenSource struct {
	rr     atomic.Uint64
	shards []tokenShard
}

func newTokenSource(shards int) *tokenSource {
	if shards <= 0 {
		shards = DefaultTokenShards
	}
	return &tokenSource{shards: make([]tokenShard, shards)}
}

func (s *tokenSource) next() Token {
	stride := uint64(len(s.shards))
	i := s.rr.Add(1) % stride
	n := s.shards[i].n.Add(1) - 1
	if n >= math.MaxUint64/stride {
		// Running a 64-bit token space dry is a logic error, not a runtime
		// condition callers can recover from.
		panic("cancellation: token space exhausted")
	}
	return Token(n*stride + i)
}
