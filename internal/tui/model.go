package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
)

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	recommender domain.Recommender
	topK        int
	input       textinput.Model
	viewport    viewport.Model
	rec         domain.Recommendation
	status      string
	cursor      int
	ready       bool
}

// New creates a new TUI model instance.
func New(recommender domain.Recommender, topK int) Model {
	if topK < 1 {
		topK = 10
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe a book, or #N to start from catalog item N"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	status := "No catalog loaded."
	if ok, rows := recommender.Health(); ok {
		status = fmt.Sprintf("Catalog of %d books loaded. Type to search.", rows)
	}
	return Model{recommender: recommender, topK: topK, input: ti, viewport: vp, status: status}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + seed line, status, input box, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderResults())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				break
			}
			req, err := parseQuery(q, m.topK)
			if err != nil {
				m.status = "Error: " + err.Error()
				return m, nil
			}
			m = m.query(req)
			return m, nil
		case "tab":
			// More like the selected result.
			if len(m.rec.Results) > 0 {
				seed := m.rec.Results[m.cursor].Index
				m.input.SetValue("#" + strconv.Itoa(seed))
				m = m.query(domain.RecommendRequest{SeedIndex: &seed, TopK: m.topK})
				return m, nil
			}
		case "down":
			if len(m.rec.Results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.rec.Results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		case "up":
			if len(m.rec.Results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.rec.Results)) % len(m.rec.Results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) query(req domain.RecommendRequest) Model {
	rec, err := m.recommender.Recommend(context.Background(), req)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.rec = domain.Recommendation{}
	} else {
		m.rec = rec
		m.status = fmt.Sprintf("%d results", len(rec.Results))
		if len(rec.Results) == 0 {
			m.status = "No similar books found. Try more descriptive words."
		}
	}
	m.cursor = 0
	m.viewport.SetContent(m.renderResults())
	return m
}

// View renders the TUI layout and current results.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Book Recommender")
	seed := seedStyle.Render(describeSeed(m.rec.SeedInfo))
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + seed + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderResults() string {
	if len(m.rec.Results) == 0 {
		return "No results yet."
	}
	var b strings.Builder
	for i, r := range m.rec.Results {
		line := fmt.Sprintf("%2d. %s  %s  %s  score=%.3f  #%d",
			r.Rank, orDash(r.Title), orDash(r.Author), orDash(r.Genre), r.Score, r.Index)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nup/down select, tab more like this")
	return b.String()
}

// parseQuery turns "#N" into a seed request and anything else into free text.
func parseQuery(q string, topK int) (domain.RecommendRequest, error) {
	if rest, ok := strings.CutPrefix(q, "#"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return domain.RecommendRequest{}, fmt.Errorf("%q is not a catalog index", rest)
		}
		return domain.RecommendRequest{SeedIndex: &n, TopK: topK}, nil
	}
	return domain.RecommendRequest{Text: &q, TopK: topK}, nil
}

func describeSeed(s domain.SeedInfo) string {
	switch s.Mode {
	case domain.ModeSeed:
		idx := 0
		if s.Index != nil {
			idx = *s.Index
		}
		return fmt.Sprintf("Because you liked #%d %s by %s", idx, orDash(s.Title), orDash(s.Author))
	case domain.ModeCustom:
		return "Matches for your description"
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	seedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
