// Package script runs Lua programs driving the simulated host of a machine,
// one bus cycle per call.
package script

import (
	"context"
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"

	"cartport/emu"
	"cartport/emu/log"
	"cartport/hw/reu"
)

var modScript = log.NewModule("script")

// Runner executes scripts against a machine.
type Runner struct {
	m    *emu.Machine
	out  io.Writer
	name string
}

func NewRunner(m *emu.Machine, name string, out io.Writer) *Runner {
	return &Runner{m: m, name: name, out: out}
}

// Run executes the Lua source src. It returns when the script ends, fails or
// when ctx is done.
func (r *Runner) Run(ctx context.Context, src string) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	for name, fn := range r.api() {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	modScript.InfoZ("running script").String("name", r.name).End()
	if err := L.DoString(src); err != nil {
		return fmt.Errorf("script %s: %w", r.name, err)
	}
	return nil
}

func checkAddr(L *lua.LState, n int) uint16 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xffff {
		L.ArgError(n, fmt.Sprintf("address out of range: %d", v))
	}
	return uint16(v)
}

func checkByte(L *lua.LState, n int) uint8 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xff {
		L.ArgError(n, fmt.Sprintf("byte out of range: %d", v))
	}
	return uint8(v)
}

func (r *Runner) api() map[string]lua.LGFunction {
	h := r.m.Host
	return map[string]lua.LGFunction{
		// Host CPU cycles.
		"read": func(L *lua.LState) int {
			L.Push(lua.LNumber(h.Read(checkAddr(L, 1))))
			return 1
		},
		"write": func(L *lua.LState) int {
			h.Write(checkAddr(L, 1), checkByte(L, 2))
			return 0
		},
		"idle": func(L *lua.LState) int {
			h.Idle(L.OptInt(1, 1))
			return 0
		},
		"run_dma": func(L *lua.LState) int {
			L.Push(lua.LNumber(h.RunDMA()))
			return 1
		},
		"steal_ba": func(L *lua.LState) int {
			h.StealBA(L.CheckInt(1))
			return 0
		},

		// Host RAM, without bus cycles.
		"poke": func(L *lua.LState) int {
			h.RAM[checkAddr(L, 1)] = checkByte(L, 2)
			return 0
		},
		"peek": func(L *lua.LState) int {
			L.Push(lua.LNumber(h.RAM[checkAddr(L, 1)]))
			return 1
		},

		// Lines.
		"irq": func(L *lua.LState) int {
			L.Push(lua.LBool(h.IRQ()))
			return 1
		},
		"dma": func(L *lua.LState) int {
			L.Push(lua.LBool(h.DMA()))
			return 1
		},
		"cycles": func(L *lua.LState) int {
			L.Push(lua.LNumber(h.CPUCycles))
			L.Push(lua.LNumber(h.DMACycles))
			return 2
		},

		// RAM expansion.
		"reu_reg": func(L *lua.LState) int {
			reu := r.reu(L)
			L.Push(lua.LNumber(reu.Peek(L.CheckInt(1))))
			return 1
		},
		"reu_mem": func(L *lua.LState) int {
			mem := r.reu(L).Mem()
			off := uint32(L.CheckInt(1))
			if L.GetTop() >= 2 {
				mem.Write8(off, checkByte(L, 2))
				return 0
			}
			L.Push(lua.LNumber(mem.Read8(off)))
			return 1
		},
		"reu_fill": func(L *lua.LState) int {
			mem := r.reu(L).Mem()
			mem.Fill(uint32(L.CheckInt(1)), L.CheckInt(2), checkByte(L, 3))
			return 0
		},
		"dump": func(L *lua.LState) int {
			if err := r.reu(L).Dump(r.out); err != nil {
				L.RaiseError("dump: %v", err)
			}
			return 0
		},

		// Helpers.
		"assert_eq": func(L *lua.LState) int {
			got, want := L.CheckAny(1), L.CheckAny(2)
			if !L.Equal(got, want) {
				msg := L.OptString(3, "assertion failed")
				L.RaiseError("%s: got %s, want %s", msg, got.String(), want.String())
			}
			return 0
		},
		"log": func(L *lua.LState) int {
			args := make([]any, 0, L.GetTop())
			for i := 1; i <= L.GetTop(); i++ {
				args = append(args, L.ToStringMeta(L.Get(i)).String())
			}
			line := fmt.Sprintln(args...)
			io.WriteString(r.out, line)
			modScript.WithField("script", r.name).Infof("%s", line[:len(line)-1])
			return 0
		},
	}
}

func (r *Runner) reu(L *lua.LState) *reu.REU {
	if r.m.REU == nil {
		L.RaiseError("RAM expansion is disabled")
	}
	return r.m.REU
}
