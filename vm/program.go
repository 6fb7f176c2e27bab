package vm

import (
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"
)

const (
	headerSize = 16
	magic      = ".noxbc--"
)

// Program is the loader's output: a program descriptor backed directly by
// the memory-mapped bytecode file, per §4.1. Close unmaps the file and
// releases the handle; callers run the program before calling Close.
type Program struct {
	file    *os.File
	mapping mmap.MMap

	instructions []byte // raw instruction stream, instructionSize bytes per entry
	n            int64
	Entrypoint   int64
	Globals      int64
}

// Load opens filename, maps it read-only, and validates the header and
// structural invariants described in §4.1 and §6. On any failure the file
// (and mapping, if created) are closed before returning.
func Load(filename string) (*Program, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errOpenFile
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errSizeQuery
	}
	size := info.Size()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errMmap
	}

	if size < headerSize || string(m[:8]) != magic {
		m.Unmap()
		f.Close()
		return nil, errBadMagic
	}

	if (size-headerSize)%instructionSize != 0 {
		m.Unmap()
		f.Close()
		return nil, errTruncated
	}

	header := int64(binary.LittleEndian.Uint64(m[8:16]))
	globals := int64(uint32(uint64(header)))
	entrypoint := int64(uint32(uint64(header) >> 32))

	n := (size - headerSize) / instructionSize
	if entrypoint < 0 || entrypoint >= n {
		m.Unmap()
		f.Close()
		return nil, errEntrypointRange
	}

	return &Program{
		file:         f,
		mapping:      m,
		instructions: m[headerSize:],
		n:            n,
		Entrypoint:   entrypoint,
		Globals:      globals,
	}, nil
}

// Len returns the number of instructions in the program.
func (p *Program) Len() int64 {
	return p.n
}

// Fetch decodes the instruction at index ip. Callers must already know
// 0 <= ip < Len(); the execution engine is responsible for that check.
func (p *Program) Fetch(ip int64) Instruction {
	off := ip * instructionSize
	return decodeInstruction(p.instructions[off : off+instructionSize])
}

// Close unmaps the file and closes the underlying handle.
func (p *Program) Close() error {
	if err := p.mapping.Unmap(); err != nil {
		return err
	}
	return p.file.Close()
}
