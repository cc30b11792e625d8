package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wasmdb/wasmexec/arena"
	"github.com/wasmdb/wasmexec/codegen"
	"github.com/wasmdb/wasmexec/config"
	"github.com/wasmdb/wasmexec/enginedriver"
	"github.com/wasmdb/wasmexec/modbuilder"
	"github.com/wasmdb/wasmexec/resultset"
	"github.com/wasmdb/wasmexec/wasmctx"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectTable modelState = iota
	stateShowResult
)

// interactiveModel lists the demo catalog's tables and, on selection, runs
// a Scan-then-Print plan against the chosen one and shows what it printed.
// There is no argument-entry state here the way the teacher's function
// browser has one: a demo table takes no parameters.
type interactiveModel struct {
	err      error
	selected int
	state    modelState
	output   string
	rows     uint32
}

func newInteractiveModel() *interactiveModel {
	return &interactiveModel{state: stateSelectTable}
}

func (m *interactiveModel) Init() tea.Cmd { return nil }

type runResultMsg struct {
	err    error
	output string
	rows   uint32
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectTable && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectTable && m.selected < len(demoTables)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectTable:
				return m, m.runSelected
			case stateShowResult:
				m.state = stateSelectTable
				m.output = ""
				m.err = nil
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateSelectTable
				m.output = ""
				m.err = nil
			}
		}

	case runResultMsg:
		m.err = msg.err
		m.output = msg.output
		m.rows = msg.rows
		m.state = stateShowResult
	}

	return m, nil
}

// runSelected drives the selected table through the same generate-then-
// execute path runScan uses, capturing the print sink's output instead of
// writing it to stdout.
func (m *interactiveModel) runSelected() tea.Msg {
	ctx := context.Background()
	tbl := demoTables[m.selected]

	p := newScanPrintPlan(tbl)
	store := encodeTable(tbl)

	a, err := arena.New(arena.Options{InitialPages: 4})
	if err != nil {
		return runResultMsg{err: err}
	}

	cfg := config.New(config.WithQuiet(true))
	qctx := wasmctx.New(1, a, p, cfg, demoLayoutFactory{})

	tableOffset, err := a.Alloc(uint32(len(store.Bytes())), 8)
	if err != nil {
		return runResultMsg{err: err}
	}
	if err := a.Write(tableOffset, store.Bytes()); err != nil {
		return runResultMsg{err: err}
	}
	qctx.MapTable(tbl.name, tableOffset, store.NumRows())

	mb := modbuilder.New()
	if _, err := codegen.Generate(mb, qctx); err != nil {
		return runResultMsg{err: err}
	}

	var out strings.Builder
	registry := wasmctx.NewRegistry()
	driver, err := enginedriver.New(ctx, cfg, registry, resultset.New(), zap.NewNop())
	if err != nil {
		return runResultMsg{err: err}
	}
	defer driver.Close(ctx)

	qctx.Sink = resultset.NewPrintSink(&out)
	result, err := driver.Execute(ctx, registry, enginedriver.Query{Context: qctx, Builder: mb})
	if err != nil {
		return runResultMsg{err: err}
	}
	return runResultMsg{output: out.String(), rows: result.RowCount}
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wasmdb"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectTable:
		b.WriteString("Select a table to scan:\n\n")
		for i, t := range demoTables {
			cursor := "  "
			line := m.formatTable(t)
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + line))
			} else {
				b.WriteString(cursor + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateShowResult:
		tbl := demoTables[m.selected]
		b.WriteString(fmt.Sprintf("Result of scanning %s:\n\n", tableStyle.Render(tbl.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.output))
			b.WriteString(fmt.Sprintf("%d rows\n", m.rows))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatTable(t demoTable) string {
	var cols []string
	for _, e := range t.schema {
		cols = append(cols, e.Identifier+": "+typeStyle.Render(witTypeStr(witType(e.Type))))
	}
	return tableStyle.Render(t.name) + "(" + strings.Join(cols, ", ") + ")"
}
