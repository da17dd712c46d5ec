package basebigt

import (
	"go.uber.org/zap/zapcore"
)

// BatchOp tracks the size of a batch of mutations being accumulated and
// tells when it should be flushed. A threshold of 0 disables that check.
type BatchOp struct {
	sizeThreshold uint64
	opsThreshold  uint64

	size uint64
	ops  uint64
}

func NewBatchOp(sizeThreshold uint64, opsThreshold uint64) *BatchOp {
	return &BatchOp{
		sizeThreshold: sizeThreshold,
		opsThreshold:  opsThreshold,
	}
}

func (b *BatchOp) Op(size int) {
	b.size += uint64(size)
	b.ops++
}

// WouldFlushNext determines if adding another item with the specified size would trigger
// a flush of the batch. This can be used to push a batch pre-emptively
func (b *BatchOp) WouldFlushNext(size int) bool {
	return b.shouldFlush(b.size+uint64(size), b.ops+1)
}

func (b *BatchOp) shouldFlush(size uint64, opCount uint64) bool {
	if b.sizeThreshold > 0 && size > b.sizeThreshold {
		return true
	}
	if b.opsThreshold > 0 && opCount > b.opsThreshold {
		return true
	}
	return false
}

func (b *BatchOp) Reset() {
	b.size = 0
	b.ops = 0
}

func (b *BatchOp) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("size_threshold", b.sizeThreshold)
	enc.AddUint64("ops_threshold", b.opsThreshold)
	enc.AddUint64("size", b.size)
	enc.AddUint64("ops", b.ops)
	return nil
}
