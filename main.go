package main

import (
	"fmt"
	"os"

	"noxvm/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the CLI contract from §6: exactly one positional argument,
// the bytecode filename. Wrong argument count prints the usage line and
// returns -1; loader errors also return -1; a clean run returns whatever
// code the program passed to SYS_EXIT.
func run(args []string) int {
	if len(args) != 1 {
		fmt.Print("Usage: vm <filename>\n")
		return -1
	}

	program, err := vm.Load(args[0])
	if err != nil {
		fmt.Println(err)
		return -1
	}
	defer program.Close()

	machine := vm.NewStd(program)
	code, err := machine.RunProgram()
	if err != nil {
		return -1
	}
	return int(code)
}
