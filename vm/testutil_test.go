package vm

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// asm is a tiny in-test assembler: it builds the raw byte image of a
// .noxbc file from a globals/entrypoint pair and a list of instructions,
// matching the file format in §6.
func asm(t *testing.T, globals, entrypoint int64, instrs []Instruction) []byte {
	t.Helper()

	buf := make([]byte, headerSize+len(instrs)*instructionSize)
	copy(buf[0:8], magic)

	header := uint64(uint32(globals)) | (uint64(uint32(entrypoint)) << 32)
	binary.LittleEndian.PutUint64(buf[8:16], header)

	for i, instr := range instrs {
		off := headerSize + i*instructionSize
		buf[off] = byte(instr.Op)
		binary.LittleEndian.PutUint64(buf[off+8:off+16], uint64(instr.Arg))
	}
	return buf
}

// writeProgram writes raw bytes to a fresh file under the test's temp
// directory and returns its path.
func writeProgram(t *testing.T, raw []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.noxbc")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func enterArg(nArgs, nLocals int64) int64 {
	return int64(uint64(uint32(nArgs)) | (uint64(uint32(nLocals)) << 32))
}

func in(op Opcode, arg int64) Instruction {
	return Instruction{Op: op, Arg: arg}
}
