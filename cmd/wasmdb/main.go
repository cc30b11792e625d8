// Command wasmdb runs a query end to end against a small built-in demo
// catalog: it builds a Scan-then-Print plan for a chosen table, generates a
// Wasm module for it, and drives that module through the engine driver the
// same way a real embedder would. There is no SQL parser in this backend's
// scope, so table selection stands in for query text.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/wasmdb/wasmexec/arena"
	"github.com/wasmdb/wasmexec/codegen"
	"github.com/wasmdb/wasmexec/config"
	"github.com/wasmdb/wasmexec/enginedriver"
	"github.com/wasmdb/wasmexec/modbuilder"
	"github.com/wasmdb/wasmexec/resultset"
	"github.com/wasmdb/wasmexec/wasmctx"
)

func main() {
	var (
		table       = flag.String("table", "", "Demo table to scan and print (see -list)")
		list        = flag.Bool("list", false, "List demo tables and exit")
		describe    = flag.Bool("describe", false, "Print -table's schema in wit-vocabulary type names and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		quiet       = flag.Bool("quiet", false, "Suppress the row-count trailer")
	)
	flag.Parse()

	if *list {
		for _, t := range demoTables {
			fmt.Println(t.name)
		}
		return
	}

	if *interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *table == "" {
		fmt.Fprintln(os.Stderr, "Usage: wasmdb -table <name> [-quiet]")
		fmt.Fprintln(os.Stderr, "       wasmdb -list")
		fmt.Fprintln(os.Stderr, "       wasmdb -table <name> -describe")
		fmt.Fprintln(os.Stderr, "       wasmdb -i  (interactive mode)")
		os.Exit(1)
	}

	tbl, ok := findTable(*table)
	if !ok {
		fmt.Fprintf(os.Stderr, "no such demo table: %s\n", *table)
		os.Exit(1)
	}

	if *describe {
		for _, e := range tbl.schema {
			fmt.Printf("%s: %s\n", e.Identifier, witTypeStr(witType(e.Type)))
		}
		return
	}

	if err := runScan(tbl, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func findTable(name string) (demoTable, bool) {
	for _, t := range demoTables {
		if t.name == name {
			return t, true
		}
	}
	return demoTable{}, false
}

// runScan is the non-interactive path: build the plan, generate the
// module, seed the arena with the table's encoded bytes, and execute.
func runScan(tbl demoTable, quiet bool) error {
	ctx := context.Background()

	p := newScanPrintPlan(tbl)
	store := encodeTable(tbl)

	a, err := arena.New(arena.Options{InitialPages: 4})
	if err != nil {
		return err
	}

	cfg := config.New(config.WithQuiet(quiet))
	qctx := wasmctx.New(1, a, p, cfg, demoLayoutFactory{})

	tableOffset, err := a.Alloc(uint32(len(store.Bytes())), 8)
	if err != nil {
		return err
	}
	if err := a.Write(tableOffset, store.Bytes()); err != nil {
		return err
	}
	qctx.MapTable(tbl.name, tableOffset, store.NumRows())

	mb := modbuilder.New()
	if _, err := codegen.Generate(mb, qctx); err != nil {
		return err
	}

	registry := wasmctx.NewRegistry()
	driver, err := enginedriver.New(ctx, cfg, registry, resultset.New(), zap.NewNop())
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	_, err = driver.Execute(ctx, registry, enginedriver.Query{Context: qctx, Builder: mb})
	return err
}

func runInteractive() error {
	m := newInteractiveModel()
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}
