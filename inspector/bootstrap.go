package inspector

import (
	"fmt"
	"strings"

	"github.com/wasmdb/wasmexec/wasmctx"
)

// BuildBootstrap synthesizes the JS source a devtools frontend attaches to:
// an import object binding stub host functions under the same names hostabi
// exports, a Uint8Array literal of the module's own bytes, and a
// compile/instantiate/call chain that mirrors what enginedriver.Execute does
// natively. The synthesized script never actually runs the guest — wazero
// already did that, or will, when the debugger resumes — it exists so a
// human attached over CDT has real source to set breakpoints on and step
// through conceptually, matching this backend's debug-only inspector path.
func BuildBootstrap(qctx *wasmctx.Context, wasmBytes []byte) string {
	var b strings.Builder

	b.WriteString("let importObject = { \"env\": {\n")
	b.WriteString("  \"insist\": function (cond, msgId) { if (!cond) console.error('insist failed:', msgId); },\n")
	b.WriteString("  \"print\": function (ptr, len) { console.log('print', ptr, len); },\n")
	b.WriteString("  \"throw\": function (kind, msgId) { console.error('guest exception', kind, msgId); },\n")
	b.WriteString("  \"print_memory_consumption\": function (bytes) { console.log('memory:', bytes); },\n")
	b.WriteString("  \"set_wasm_instance_raw_memory\": function (id) { console.log('bound context', id); },\n")
	b.WriteString("  \"read_result_set\": function (ctxId, offset, count) { console.log('result set', ctxId, offset, count); }\n")
	b.WriteString("} };\n\n")

	b.WriteString("const bytes = Uint8Array.from([")
	for i, byt := range wasmBytes {
		if i != 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", byt)
	}
	b.WriteString("]);\n\n")

	fmt.Fprintf(&b, "debugger;\nWebAssembly.compile(bytes).then(\n"+
		"    (module) => WebAssembly.instantiate(module, importObject),\n"+
		"    (error) => console.error(`compilation failed: ${error}`)\n"+
		").then(\n"+
		"    function(instance) {\n"+
		"        const numTuples = instance.exports.main(%d);\n"+
		"        console.log('The result set contains', numTuples, 'tuples.');\n"+
		"        debugger;\n"+
		"    },\n"+
		"    (error) => console.error(`instantiation failed: ${error}`)\n"+
		");\n", qctx.ID)

	return b.String()
}
