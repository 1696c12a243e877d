// Package tui is the terminal article browser: an article list, a reader and
// a search modal over the fuzzy index.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/rixa/internal/highlight"
	"github.com/starford/rixa/internal/library"
	"github.com/starford/rixa/internal/markdown"
	"github.com/starford/rixa/internal/models"
	"github.com/starford/rixa/internal/search"
)

// Library is what the browser reads from.
type Library interface {
	All() []models.Article
	Search(query string) library.SearchResponse
	Blocks(ctx context.Context, id int) ([]markdown.Block, error)
}

type mode int

const (
	modeList mode = iota
	modeArticle
	modeSearch
)

// Screen rows above the first list row.
const (
	listTop    = 2
	resultsTop = 3
)

// codeViews holds the highlight views of the open article, indexed like its
// blocks. done closes when they are disposed.
type codeViews struct {
	views []*highlight.CodeView
	done  chan struct{}
	once  sync.Once
}

func (c *codeViews) dispose() {
	c.once.Do(func() {
		for _, v := range c.views {
			if v != nil {
				v.Dispose()
			}
		}
		close(c.done)
	})
}

// codeReadyMsg reports that one view of a set has its markup.
type codeReadyMsg struct {
	set *codeViews
}

// Model is the bubbletea model of the browser.
type Model struct {
	lib    Library
	styles *Styles

	width  int
	height int
	mode   mode
	// prev is where closing the search modal returns to.
	prev mode

	articles []models.Article
	cursor   int
	offset   int

	hl    *highlight.Highlighter
	theme highlight.ThemeID

	article models.Article
	blocks  []markdown.Block
	code    *codeViews
	lines   []string
	scroll  int

	input  textinput.Model
	picker search.Picker[models.Article]
	status search.Status

	err error
}

// New creates the browser model.
func New(lib Library) Model {
	ti := textinput.New()
	ti.Placeholder = "Search articles..."
	ti.CharLimit = 256
	ti.Width = 50

	return Model{
		lib:      lib,
		styles:   DefaultStyles(),
		width:    80,
		height:   24,
		articles: lib.All(),
		input:    ti,
	}
}

// WithHighlighter makes the reader highlight code blocks with h, which
// should be backed by highlight.TerminalLoader. Code shows plain until its
// markup arrives.
func (m Model) WithHighlighter(h *highlight.Highlighter, theme highlight.ThemeID) Model {
	m.hl, m.theme = h, theme
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-6, 10)
		if m.blocks != nil {
			m.renderArticle()
		}
		return m, nil

	case codeReadyMsg:
		if msg.set == m.code && m.blocks != nil {
			m.renderArticle()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeArticle:
			return m.updateArticle(msg)
		default:
			return m.updateList(msg)
		}

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}

	if m.mode == modeSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "/", "ctrl+k":
		cmd := m.openSearch()
		return m, cmd
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		if m.cursor < len(m.articles) {
			cmd := m.open(m.articles[m.cursor])
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateArticle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.closeArticle()
		m.mode = modeList
	case "/", "ctrl+k":
		cmd := m.openSearch()
		return m, cmd
	case "up", "k":
		m.scrollBy(-1)
	case "down", "j":
		m.scrollBy(1)
	case "pgup":
		m.scrollBy(-m.bodyHeight())
	case "pgdown", " ":
		m.scrollBy(m.bodyHeight())
	case "home", "g":
		m.scroll = 0
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeSearch()
		return m, nil
	case "enter":
		if a, ok := m.picker.Confirm(); ok {
			m.closeSearch()
			cmd := m.open(a)
			return m, cmd
		}
		return m, nil
	case "up", "ctrl+p":
		m.picker.Prev()
		return m, nil
	case "down", "ctrl+n":
		m.picker.Next()
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.runSearch()
	}
	return m, cmd
}

// updateMouse maps a left click to the row under the pointer. A clicked
// search result goes through the same picker as Enter.
func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.mode == modeArticle {
			m.scrollBy(-3)
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if m.mode == modeArticle {
			m.scrollBy(3)
		}
		return m, nil
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		if a, ok := m.picker.Select(msg.Y - resultsTop); ok {
			m.closeSearch()
			cmd = m.open(a)
		}
	case modeList:
		row := m.offset + msg.Y - listTop
		if row >= 0 && row < len(m.articles) {
			m.cursor = row
			cmd = m.open(m.articles[row])
		}
	}
	return m, cmd
}

func (m *Model) openSearch() tea.Cmd {
	m.prev = m.mode
	m.mode = modeSearch
	m.input.SetValue("")
	m.runSearch()
	return m.input.Focus()
}

func (m *Model) closeSearch() {
	m.input.Blur()
	m.mode = m.prev
}

func (m *Model) runSearch() {
	resp := m.lib.Search(m.input.Value())
	m.picker.SetResults(resp.Results)
	m.status = resp.Status
}

// open shows a in the reader. The returned command delivers highlighted
// code as it becomes ready.
func (m *Model) open(a models.Article) tea.Cmd {
	blocks, err := m.lib.Blocks(context.Background(), a.ID)
	if err != nil {
		m.err = err
		return nil
	}
	m.closeArticle()
	m.err = nil
	m.article = a
	m.blocks = blocks
	m.mode = modeArticle
	m.scroll = 0
	cmd := m.startCode()
	m.renderArticle()
	return cmd
}

// startCode creates a view per code block and starts the ones the cache
// cannot answer yet.
func (m *Model) startCode() tea.Cmd {
	if m.hl == nil {
		return nil
	}
	set := &codeViews{
		views: make([]*highlight.CodeView, len(m.blocks)),
		done:  make(chan struct{}),
	}
	m.code = set

	var cmds []tea.Cmd
	for i, b := range m.blocks {
		if b.Kind != markdown.KindCode {
			continue
		}
		v := highlight.NewCodeView(m.hl, b.Code(), b.Language, m.theme)
		set.views[i] = v
		if !v.Ready() {
			cmds = append(cmds, waitCode(set, v))
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func waitCode(set *codeViews, v *highlight.CodeView) tea.Cmd {
	ready := make(chan struct{}, 1)
	v.Start(context.Background(), func(highlight.Result) { ready <- struct{}{} })
	return func() tea.Msg {
		select {
		case <-ready:
			return codeReadyMsg{set: set}
		case <-set.done:
			return nil
		}
	}
}

// closeArticle disposes the open article's code views.
func (m *Model) closeArticle() {
	if m.code != nil {
		m.code.dispose()
		m.code = nil
	}
	m.blocks = nil
}

func (m *Model) renderArticle() {
	var views []*highlight.CodeView
	if m.code != nil {
		views = m.code.views
	}
	m.lines = strings.Split(Render(m.blocks, views, m.width-2, m.styles), "\n")
	m.scrollBy(0)
}

func (m *Model) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(0, len(m.articles)-1))
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m *Model) scrollBy(delta int) {
	m.scroll = clamp(m.scroll+delta, 0, max(0, len(m.lines)-m.bodyHeight()))
}

// bodyHeight is the number of rows between the two-line header and the
// footer.
func (m Model) bodyHeight() int {
	return max(m.height-listTop-1, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.mode {
	case modeSearch:
		return m.viewSearch()
	case modeArticle:
		return m.viewArticle()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("rixa") + m.styles.Dim.Render(fmt.Sprintf("  %d articles", len(m.articles))))
	b.WriteString("\n\n")

	if len(m.articles) == 0 {
		b.WriteString(m.styles.Dim.Render("No articles."))
		b.WriteString("\n")
	}
	end := min(len(m.articles), m.offset+m.bodyHeight())
	for i := m.offset; i < end; i++ {
		b.WriteString(m.articleRow(m.articles[i], i == m.cursor))
		b.WriteString("\n")
	}
	b.WriteString(m.footer("↑/↓ move • enter open • / search • q quit"))
	return b.String()
}

func (m Model) viewArticle() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.article.DisplayTitle))
	b.WriteString(m.styles.Dim.Render(fmt.Sprintf("  %s • %s", m.article.Category, m.article.ReadTime)))
	b.WriteString("\n\n")

	end := min(len(m.lines), m.scroll+m.bodyHeight())
	for i := m.scroll; i < end; i++ {
		b.WriteString(m.lines[i])
		b.WriteString("\n")
	}
	b.WriteString(m.footer("↑/↓ scroll • esc back • / search • q quit"))
	return b.String()
}

// viewSearch draws the modal. Result rows start at resultsTop, one line
// each, so mouse rows map straight onto picker indexes.
func (m Model) viewSearch() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Search"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch m.status {
	case search.StatusNoArticles:
		b.WriteString(m.styles.Dim.Render("No articles available."))
		b.WriteString("\n")
	case search.StatusNoMatches:
		b.WriteString(m.styles.Dim.Render(fmt.Sprintf("No results for %q", m.input.Value())))
		b.WriteString("\n")
	default:
		b.WriteString(m.styles.Rule.Render(strings.Repeat("─", max(m.width, 10))))
		b.WriteString("\n")
		for i, a := range m.picker.Items() {
			b.WriteString(m.articleRow(a, i == m.picker.Cursor()))
			b.WriteString("\n")
		}
	}
	b.WriteString(m.footer("↑/↓ navigate • enter open • esc close"))
	return b.String()
}

func (m Model) articleRow(a models.Article, selected bool) string {
	icon := lipgloss.NewStyle().Foreground(languageColor(a.Language)).Render("●")
	row := fmt.Sprintf("%s %s  %s", icon, a.DisplayTitle, m.styles.Dim.Render(a.Category))
	if selected {
		return m.styles.Selected.Render("›") + " " + m.styles.Selected.Render(row)
	}
	return "  " + row
}

func (m Model) footer(help string) string {
	if m.err != nil {
		return m.styles.Error.Render(m.err.Error())
	}
	return m.styles.Dim.Render(help)
}

// Run starts the browser in the alternate screen with mouse support. A nil
// h leaves code unhighlighted.
func Run(lib Library, h *highlight.Highlighter, theme highlight.ThemeID) error {
	p := tea.NewProgram(New(lib).WithHighlighter(h, theme), tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.closeArticle()
	}
	return err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
