// Package content shows one day's devotional material in a scrollable pane.
package content

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sirr/internal/models"
)

// CloseMsg returns to the journey.
type CloseMsg struct{}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	themeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

type Model struct {
	viewport viewport.Model
	day      models.Content
	loaded   bool
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height), width: width, height: height}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	if m.loaded {
		m.viewport.SetContent(render(m.day, width))
	}
}

// SetContent shows c from the top.
func (m *Model) SetContent(c models.Content) {
	m.day = c
	m.loaded = true
	m.viewport.SetContent(render(c, m.width))
	m.viewport.GotoTop()
}

// Loading clears the pane while content is fetched.
func (m *Model) Loading(day int) {
	m.loaded = false
	m.viewport.SetContent(mutedStyle.Render(fmt.Sprintf("Loading day %d...", day)))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "backspace":
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return lipgloss.NewStyle().Padding(1, 2).Render(m.viewport.View())
}

func render(c models.Content, width int) string {
	wrap := lipgloss.NewStyle().Width(max(width-6, 20))

	header := fmt.Sprintf("Day %d", c.Day)
	if c.Juz > 0 {
		header += fmt.Sprintf(" · Juz %d", c.Juz)
	}
	parts := []string{titleStyle.Render(header)}
	if c.SurahRange != "" {
		parts = append(parts, mutedStyle.Render(c.SurahRange))
	}
	parts = append(parts, "", themeStyle.Render(c.CoreTheme))
	if c.Placeholder {
		parts = append(parts, mutedStyle.Render("Content is not available offline yet."))
	}
	if c.Explanation != "" {
		parts = append(parts, "", wrap.Render(c.Explanation))
	}
	if len(c.KeyTakeaways) > 0 {
		parts = append(parts, sectionStyle.Render("Key takeaways"))
		for _, k := range c.KeyTakeaways {
			parts = append(parts, wrap.Render("• "+k))
		}
	}
	if c.ReflectionQuestion != "" {
		parts = append(parts, sectionStyle.Render("Reflect"), wrap.Render(c.ReflectionQuestion))
	}
	if c.RelatedAyah != "" {
		parts = append(parts, sectionStyle.Render("Ayah"), wrap.Render(c.RelatedAyah))
	}
	if c.RelatedHadith != "" {
		parts = append(parts, sectionStyle.Render("Hadith"), wrap.Render(c.RelatedHadith))
	}
	var media []string
	if c.VideoURL != "" {
		media = append(media, "Video: "+c.VideoURL)
	}
	if c.AudioURL != "" {
		media = append(media, "Audio: "+c.AudioURL)
	}
	if len(media) > 0 {
		parts = append(parts, sectionStyle.Render("Media"), strings.Join(media, "\n"))
	}
	parts = append(parts, "", mutedStyle.Render("esc: back  c: complete"))
	return strings.Join(parts, "\n")
}
