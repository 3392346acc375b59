package ui

import "github.com/charmbracelet/bubbles/key"

type pagerKeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	First    key.Binding
	Last     key.Binding
	Up       key.Binding
	Down     key.Binding
	Narrate  key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Contents key.Binding
	Settings key.Binding
	Support  key.Binding
	Copy     key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var pagerKeys = pagerKeyMap{
	Next:     key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/l", "next page")),
	Prev:     key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/h", "previous page")),
	First:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
	Last:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Narrate:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "read aloud / stop")),
	Faster:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	Slower:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
	Contents: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "contents")),
	Settings: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "settings")),
	Support:  key.NewBinding(key.WithKeys("$"), key.WithHelp("$", "support the author")),
	Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy page")),
	Back:     key.NewBinding(key.WithKeys("esc", "backspace", "b"), key.WithHelp("esc", "library")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

func (k pagerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Narrate, k.Contents, k.Back, k.Help}
}

func (k pagerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.First, k.Last},
		{k.Up, k.Down, k.Contents, k.Copy},
		{k.Narrate, k.Faster, k.Slower},
		{k.Settings, k.Support, k.Back, k.Quit},
	}
}

type libraryKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
	Settings    key.Binding
	Support     key.Binding
	Quit        key.Binding
}

var libraryKeys = libraryKeyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:        key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "read")),
	Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
	ClearFilter: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Settings:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "settings")),
	Support:     key.NewBinding(key.WithKeys("$"), key.WithHelp("$", "support")),
	Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

func (k libraryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Filter, k.Settings, k.Support, k.Quit}
}

func (k libraryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type overlayKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Copy   key.Binding
	Close  key.Binding
}

var overlayKeys = overlayKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "less")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "more")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Copy:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy link")),
	Close:  key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close")),
}
