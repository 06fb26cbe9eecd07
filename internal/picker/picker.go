// Package picker is a small interactive list used to choose a search result
// or a target folder.
package picker

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Option is one selectable row.
type Option struct {
	Label  string
	Detail string
	// Value is what the caller gets back, e.g. a URL or folder id.
	Value string
}

// KeyMap holds the picker key bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns vim-style bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c", "q"),
			key.WithHelp("q/esc", "cancel"),
		),
	}
}

// Picker is a bubbletea model for selecting one Option.
type Picker struct {
	title     string
	options   []Option
	keys      KeyMap
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a Picker over options.
func New(title string, options []Option) Picker {
	return Picker{
		title:   title,
		options: options,
		keys:    DefaultKeyMap(),
		width:   80,
		height:  24,
	}
}

// FromSearchResults lists search hits with their folder path.
func FromSearchResults(results []search.SearchResult, query string) Picker {
	options := make([]Option, len(results))
	for i, r := range results {
		options[i] = Option{
			Label:  r.Item.Item.Title,
			Detail: r.Path + "  " + r.Item.Item.URL,
			Value:  r.Item.Item.URL,
		}
	}
	return New(fmt.Sprintf("Search: %s (%d results)", query, len(results)), options)
}

// FromFolders lists every folder depth-first, indented by depth. Folders in
// exclude are left out.
func FromFolders(title string, snap model.Snapshot, exclude map[string]bool) Picker {
	var options []Option
	var walk func(parentID *string)
	walk = func(parentID *string) {
		for _, f := range snap.Children(parentID) {
			if exclude[f.ID] {
				continue
			}
			options = append(options, Option{
				Label:  strings.Repeat("  ", model.Depth(snap.Folders, f.ID)) + f.Name,
				Detail: fmt.Sprintf("%d items", snap.Count(&f.ID)),
				Value:  f.ID,
			})
			walk(&f.ID)
		}
	}
	walk(nil)
	return New(title, options)
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.cancelled = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Select):
			if len(p.options) == 0 {
				return p, nil
			}
			p.selected = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.options)-1 {
				p.cursor++
			}
			return p, nil

		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(p.title))
	b.WriteString("\n\n")

	// Each option takes two lines; keep the cursor on screen.
	visible := max((p.height-6)/2, 1)
	start := 0
	if p.cursor >= visible {
		start = p.cursor - visible + 1
	}
	end := min(start+visible, len(p.options))

	for i := start; i < end; i++ {
		opt := p.options[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		b.WriteString(fmt.Sprintf("%s%s\n", cursor, style.Render(opt.Label)))
		if opt.Detail != "" {
			b.WriteString(fmt.Sprintf("   %s\n", detailStyle.Render(opt.Detail)))
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k: move  Enter: select  q/Esc: cancel"))

	return b.String()
}

// Selected returns the chosen option, or false if cancelled.
func (p Picker) Selected() (Option, bool) {
	if p.cancelled || !p.selected || p.cursor >= len(p.options) {
		return Option{}, false
	}
	return p.options[p.cursor], true
}

// Options returns the rows in display order.
func (p Picker) Options() []Option {
	return p.options
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

// Run shows the picker on the terminal and returns the selection.
func Run(p Picker, in io.Reader, out io.Writer) (Option, bool, error) {
	final, err := tea.NewProgram(p, tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return Option{}, false, err
	}
	opt, ok := final.(Picker).Selected()
	return opt, ok, nil
}
