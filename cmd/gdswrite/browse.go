package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/gdsii/gds"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// section is the library header or one structure of a stream.
type section struct {
	name     string
	elements int
	records  []gds.Record
}

// sections splits records into the library header followed by one
// section per structure. ENDLIB closes the header section.
func sections(recs []gds.Record) []section {
	lib := section{name: "(library)"}
	var out []section
	var cur *section
	for _, r := range recs {
		switch {
		case r.Type == gds.BgnStr:
			out = append(out, section{})
			cur = &out[len(out)-1]
		case cur == nil:
			if r.Type == gds.LibName {
				lib.name = "(library " + r.Text() + ")"
			}
			lib.records = append(lib.records, r)
			continue
		}

		cur.records = append(cur.records, r)
		switch r.Type {
		case gds.StrName:
			cur.name = r.Text()
		case gds.Boundary, gds.Path, gds.SRef, gds.ARef, gds.Text:
			cur.elements++
		case gds.EndStr:
			cur = nil
		}
	}
	return append([]section{lib}, out...)
}

type browseState int

const (
	stateList browseState = iota
	stateFilter
	stateRecords
)

type browseModel struct {
	path     string
	sections []section
	visible  []int
	filter   textinput.Model
	selected int
	offset   int
	height   int
	state    browseState
}

func newBrowseModel(path string, recs []gds.Record) *browseModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "structure name"
	ti.Width = 40

	m := &browseModel{
		path:     path,
		sections: sections(recs),
		filter:   ti,
		height:   20,
	}
	m.refilter()
	return m
}

func (m *browseModel) refilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, s := range m.sections {
		if q == "" || strings.Contains(strings.ToLower(s.name), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(0, len(m.visible)-1)
	}
}

func (m *browseModel) current() *section {
	if len(m.visible) == 0 {
		return nil
	}
	return &m.sections[m.visible[m.selected]]
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(1, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			switch {
			case m.state == stateList && m.selected > 0:
				m.selected--
			case m.state == stateRecords && m.offset > 0:
				m.offset--
			}

		case "down", "j":
			switch m.state {
			case stateList:
				if m.selected < len(m.visible)-1 {
					m.selected++
				}
			case stateRecords:
				if s := m.current(); s != nil && m.offset < len(s.records)-1 {
					m.offset++
				}
			}

		case "enter":
			if m.state == stateList && m.current() != nil {
				m.state = stateRecords
				m.offset = 0
			}

		case "/":
			if m.state == stateList {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "esc", "backspace":
			if m.state == stateRecords {
				m.state = stateList
			}
		}
	}
	return m, nil
}

func (m *browseModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.filter.SetValue("")
		fallthrough
	case "enter":
		m.filter.Blur()
		m.state = stateList
		m.refilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *browseModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("GDSII Browser"))
	b.WriteString(" ")
	b.WriteString(m.path)
	b.WriteString("\n\n")

	switch m.state {
	case stateList, stateFilter:
		start := max(0, m.selected-m.height+1)
		end := min(len(m.visible), start+m.height)
		for i := start; i < end; i++ {
			s := m.sections[m.visible[i]]
			line := fmt.Sprintf("%-34s", s.name)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString(countStyle.Render(fmt.Sprintf(" %d elements, %d records", s.elements, len(s.records))))
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString("  no matching structures\n")
		}
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(m.filter.View())
			b.WriteString("\n")
			b.WriteString(helpStyle.Render("enter apply • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter records • / filter • q quit"))
		}

	case stateRecords:
		s := m.current()
		b.WriteString(structureStyle.Render(s.name))
		b.WriteString("\n\n")
		end := min(len(s.records), m.offset+m.height)
		for _, r := range s.records[m.offset:end] {
			b.WriteString(r.String())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("records %d-%d of %d • ↑/↓ scroll • esc back • q quit",
			m.offset+1, end, len(s.records))))
	}
	return b.String()
}

func browse(path string, recs []gds.Record) error {
	p := tea.NewProgram(newBrowseModel(path, recs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
