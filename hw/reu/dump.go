package reu

import (
	"io"

	"github.com/go-faster/jx"
)

// Dump writes the register file and transfer state as a JSON object.
func (r *REU) Dump(w io.Writer) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.UInt8(r.regs.Value[RegStatus]) })
		e.Field("command", func(e *jx.Encoder) { e.UInt8(r.command()) })
		e.Field("c64_base", func(e *jx.Encoder) { e.UInt16(r.c64Base()) })
		e.Field("reu_base", func(e *jx.Encoder) { e.UInt32(r.reuBase()) })
		e.Field("length", func(e *jx.Encoder) { e.UInt16(r.length()) })
		e.Field("int_mask", func(e *jx.Encoder) { e.UInt8(r.intMask()) })
		e.Field("addr_ctl", func(e *jx.Encoder) { e.UInt8(r.regs.Value[RegAddrCtl]) })
		e.Field("autoload_shadow", func(e *jx.Encoder) { e.Bool(r.autoShadow) })
		e.Field("busy", func(e *jx.Encoder) { e.Bool(r.busy) })
		e.Field("shadow", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range r.regs.Shadow[:RegAddrCtl+1] {
					e.UInt8(v)
				}
			})
		})
	})
	_, err := w.Write(append(e.Bytes(), '\n'))
	return err
}
