package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sophia8vm/sophia8/pkg/isa"
)

func TestLookup(t *testing.T) {
	assert := assert.New(t)

	op, ok := isa.Lookup("JMP")
	assert.True(ok)
	assert.Equal(isa.JMP, op)

	_, ok = isa.Lookup("jmp")
	assert.False(ok, "mnemonics are case-sensitive")

	_, ok = isa.Lookup("BOGUS")
	assert.False(ok)
}

func TestLengthsCoverAllMnemonics(t *testing.T) {
	assert := assert.New(t)

	for name, op := range map[string]isa.Opcode{
		"HALT": isa.HALT, "LOAD": isa.LOAD, "STORE": isa.STORE,
		"STORER": isa.STORER, "SET": isa.SET, "INC": isa.INC, "DEC": isa.DEC,
		"JMP": isa.JMP, "CMP": isa.CMP, "CMPR": isa.CMPR, "JZ": isa.JZ,
		"JNZ": isa.JNZ, "JC": isa.JC, "JNC": isa.JNC, "ADD": isa.ADD,
		"ADDR": isa.ADDR, "PUSH": isa.PUSH, "POP": isa.POP, "CALL": isa.CALL,
		"RET": isa.RET, "SUB": isa.SUB, "SUBR": isa.SUBR, "MUL": isa.MUL,
		"MULR": isa.MULR, "DIV": isa.DIV, "DIVR": isa.DIVR, "SHL": isa.SHL,
		"SHR": isa.SHR, "LOADR": isa.LOADR, "NOP": isa.NOP,
	} {
		length, ok := isa.Lengths[op]
		assert.True(ok, "missing length for %s", name)
		sig, ok := isa.Signatures[op]
		assert.True(ok, "missing signature for %s", name)
		want := 1
		for _, kind := range sig {
			if kind == isa.Addr16 {
				want += 2
			} else {
				want++
			}
		}
		assert.Equal(length, want, "length/signature mismatch for %s", name)
	}
}

func TestLookupRegister(t *testing.T) {
	assert := assert.New(t)

	tok, ok := isa.LookupRegister("R3", isa.Gpr)
	assert.True(ok)
	assert.Equal(isa.RegR3, tok)

	_, ok = isa.LookupRegister("IP", isa.Gpr)
	assert.False(ok, "IP is not a GPR")

	tok, ok = isa.LookupRegister("IP", isa.AnyReg)
	assert.True(ok)
	assert.Equal(isa.RegIP, tok)

	_, ok = isa.LookupRegister("R9", isa.AnyReg)
	assert.False(ok)
}

func TestGPRIndex(t *testing.T) {
	assert := assert.New(t)

	idx, ok := isa.GPRIndex(byte(isa.RegR0))
	assert.True(ok)
	assert.Equal(0, idx)

	idx, ok = isa.GPRIndex(byte(isa.RegR7))
	assert.True(ok)
	assert.Equal(7, idx)

	_, ok = isa.GPRIndex(byte(isa.RegIP))
	assert.False(ok, "IP is not a GPR")

	_, ok = isa.GPRIndex(0x00)
	assert.False(ok)
}

func TestIsAnyReg(t *testing.T) {
	assert := assert.New(t)

	assert.True(isa.IsAnyReg(byte(isa.RegR0)))
	assert.True(isa.IsAnyReg(byte(isa.RegBP)))
	assert.False(isa.IsAnyReg(0x00))
	assert.False(isa.IsAnyReg(0xFF))
}

func TestRegisterTokenBytesMatchSpec(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(isa.RegToken(0xF2), isa.RegR0)
	assert.Equal(isa.RegToken(0xF9), isa.RegR7)
	assert.Equal(isa.RegToken(0xFA), isa.RegIP)
	assert.Equal(isa.RegToken(0xFB), isa.RegSP)
	assert.Equal(isa.RegToken(0xFC), isa.RegBP)
}
