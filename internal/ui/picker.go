// package ui implements the interactive playlist picker used by selective
// export and import.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// PickItem is one selectable playlist.
type PickItem struct {
	ID          string
	Name        string
	Description string
	Tracks      int
}

// pickEntry wraps [PickItem] with its selection state to implement [list.Item].
type pickEntry struct {
	item     PickItem
	selected bool
}

func (e pickEntry) FilterValue() string { return e.item.Name }

func (e pickEntry) Title() string {
	box := "[ ]"
	if e.selected {
		box = styles.ok.Render("[x]")
	}
	return fmt.Sprintf("%s %s", box, e.item.Name)
}

func (e pickEntry) Description() string {
	desc := fmt.Sprintf("%d tracks", e.item.Tracks)
	if e.item.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, e.item.Description)
	}
	return desc
}

// keyMap defines the [key.Binding] mapping for the picker.
type keyMap struct {
	toggle  key.Binding
	all     key.Binding
	none    key.Binding
	confirm key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		all:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		none:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "select none")),
		confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.confirm, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.all, k.none},
		{k.confirm, k.quit},
	}
}

// PickerModel is the bubbletea model for multi-selecting playlists.
type PickerModel struct {
	list      list.Model
	entries   []pickEntry
	keys      keyMap
	help      help.Model
	confirmed bool
	canceled  bool
	width     int
	height    int
}

// NewPicker creates a picker over the given items, none selected.
func NewPicker(title string, items []PickItem) *PickerModel {
	entries := make([]pickEntry, len(items))
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		entries[i] = pickEntry{item: item}
		listItems[i] = entries[i]
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(listItems, delegate, 0, 0)
	l.Title = title
	l.Styles.Title = styles.title
	l.SetShowHelp(false)

	return &PickerModel{
		list:    l,
		entries: entries,
		keys:    newKeyMap(),
		help:    help.New(),
	}
}

func (m *PickerModel) Init() tea.Cmd {
	return nil
}

func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.toggle):
			m.toggleCurrent()
			return m, nil
		case key.Matches(msg, m.keys.all):
			m.setAll(true)
			return m, nil
		case key.Matches(msg, m.keys.none):
			m.setAll(false)
			return m, nil
		case key.Matches(msg, m.keys.confirm):
			m.confirmed = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.quit):
			m.canceled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *PickerModel) View() string {
	return m.list.View() + "\n" + m.help.View(m.keys)
}

func (m *PickerModel) toggleCurrent() {
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.entries) {
		return
	}
	m.entries[idx].selected = !m.entries[idx].selected
	m.list.SetItem(idx, m.entries[idx])
}

func (m *PickerModel) setAll(selected bool) {
	for i := range m.entries {
		m.entries[i].selected = selected
		m.list.SetItem(i, m.entries[i])
	}
}

// Canceled reports whether the user backed out without confirming.
func (m *PickerModel) Canceled() bool {
	return m.canceled
}

// Selected returns the ids the user confirmed, in list order.
func (m *PickerModel) Selected() map[string]bool {
	if !m.confirmed {
		return nil
	}
	selected := map[string]bool{}
	for _, e := range m.entries {
		if e.selected {
			selected[e.item.ID] = true
		}
	}
	return selected
}

// RunPicker runs the picker as a full-screen program and returns the chosen
// ids. A canceled picker returns nil with no error.
func RunPicker(title string, items []PickItem) (map[string]bool, error) {
	model := NewPicker(title, items)
	program := tea.NewProgram(model, tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}

	picker, ok := final.(*PickerModel)
	if !ok || picker.Canceled() {
		return nil, nil
	}
	return picker.Selected(), nil
}
