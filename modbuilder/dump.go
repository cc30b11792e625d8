package modbuilder

import (
	"fmt"

	"github.com/wasmdb/wasmexec/wasm"
)

// dumpModule prints a human-readable summary of the generated module to
// stdout when wasm_dump is set, and unconditionally when the module fails
// validation, mirroring the driver's diagnostic-on-abort contract.
func dumpModule(m *wasm.Module) {
	fmt.Printf("module: %d types, %d imports, %d funcs, %d exports\n",
		len(m.Types), len(m.Imports), len(m.Code), len(m.Exports))
	for _, imp := range m.Imports {
		fmt.Printf("  import %s.%s\n", imp.Module, imp.Name)
	}
	for _, exp := range m.Exports {
		fmt.Printf("  export %s\n", exp.Name)
	}
}
