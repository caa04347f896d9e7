package state

// OutputChunk is one captured write to a standard descriptor, in program
// order, for the result reporter's "Output" field (spec §6).
type OutputChunk struct {
	FD   uint32
	Data []byte
}

// OutputBuffer accumulates fd 1/2 writes (spec §4.5 "fd_write... also
// append to the state's output buffer").
type OutputBuffer struct {
	chunks []OutputChunk
	owned  bool
}

func NewOutputBuffer() *OutputBuffer {
	return &OutputBuffer{owned: true}
}

func (o *OutputBuffer) Fork() *OutputBuffer {
	return &OutputBuffer{chunks: o.chunks, owned: false}
}

func (o *OutputBuffer) Append(fd uint32, data []byte) {
	if !o.owned {
		cp := make([]OutputChunk, len(o.chunks), len(o.chunks)+1)
		copy(cp, o.chunks)
		o.chunks = cp
		o.owned = true
	}
	o.chunks = append(o.chunks, OutputChunk{FD: fd, Data: append([]byte(nil), data...)})
}

// All returns every captured chunk in program order.
func (o *OutputBuffer) All() []OutputChunk {
	return o.chunks
}
