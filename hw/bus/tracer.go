package bus

import (
	"io"

	"github.com/go-faster/jx"

	"cartport/emu/log"
	"cartport/hw/hwio"
)

type record struct {
	cycle   uint64
	mode    Mode
	ctl     hwio.Control
	addr    uint16
	data    uint8
	write   bool
	handled bool
}

// Tracer writes one JSON object per line for each traced bus cycle. It stops
// at the first write error, see Err.
type Tracer struct {
	w   io.Writer
	enc jx.Encoder
	buf []byte
	err error
}

func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w, buf: make([]byte, 4)}
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789abcdef"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func (t *Tracer) hex16(v uint16) string {
	hexEncode(t.buf[0:], byte(v>>8))
	hexEncode(t.buf[2:], byte(v))
	return string(t.buf[:4])
}

func (t *Tracer) hex8(v uint8) string {
	hexEncode(t.buf[0:], v)
	return string(t.buf[:2])
}

// Err returns the first error met writing the trace.
func (t *Tracer) Err() error { return t.err }

func (t *Tracer) write(r record) {
	if t.err != nil {
		return
	}
	e := &t.enc
	e.Reset()
	e.ObjStart()
	e.FieldStart("cycle")
	e.UInt64(r.cycle)
	e.FieldStart("mode")
	e.Str(r.mode.String())
	e.FieldStart("ctl")
	e.Str(r.ctl.String())
	e.FieldStart("addr")
	e.Str(t.hex16(r.addr))
	if r.write || r.mode == DMA {
		e.FieldStart("data")
		e.Str(t.hex8(r.data))
	}
	e.FieldStart("write")
	e.Bool(r.write)
	e.FieldStart("handled")
	e.Bool(r.handled)
	e.ObjEnd()

	buf := append(e.Bytes(), '\n')
	if _, err := t.w.Write(buf); err != nil {
		t.err = err
		log.ModBus.WarnZ("trace write failed, tracing stopped").
			Uint("cycle", r.cycle).
			Error("err", err).
			End()
	}
}
