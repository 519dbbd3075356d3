package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"cclog/internal/core/db"
)

func createViewport(detail *db.SessionDetail, width, height int) viewport.Model {
	vp := viewport.New(width, height-2)
	vp.SetContent(renderSessionDetail(detail, width))
	return vp
}

func renderSessionDetail(detail *db.SessionDetail, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Session " + detail.SessionUUID))
	b.WriteString("\n")
	b.WriteString(searchMetaStyle.Render(detail.ProjectPath))
	b.WriteString("\n")
	if detail.Summary != "" {
		b.WriteString(detail.Summary)
		b.WriteString("\n")
	}
	b.WriteString(searchMetaStyle.Render(fmt.Sprintf("%d messages | %s in / %s out tokens",
		len(detail.Messages),
		humanize.Comma(int64(detail.TotalInputTokens)),
		humanize.Comma(int64(detail.TotalOutputTokens)))))
	b.WriteString("\n\n")

	for _, msg := range detail.Messages {
		header := roleStyle(msg.Type).Render(strings.ToUpper(msg.Type))
		if !msg.Timestamp.IsZero() {
			header += " " + timestampStyle.Render(msg.Timestamp.Format("2006-01-02 15:04:05"))
		}
		b.WriteString(header)
		b.WriteString("\n")

		for _, block := range msg.Blocks {
			b.WriteString(renderBlock(block, width))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func roleStyle(msgType string) lipgloss.Style {
	switch msgType {
	case "user":
		return userStyle
	case "assistant":
		return assistantStyle
	default:
		return systemStyle
	}
}

func renderBlock(block db.ContentBlock, width int) string {
	switch block.BlockType {
	case "thinking":
		return thinkingStyle.Render(block.TextContent) + "\n"
	case "tool_use":
		out := toolStyle.Render("[tool: "+block.ToolName+"]") + "\n"
		if len(block.ToolInput) > 0 {
			input := string(block.ToolInput)
			if len(input) > 300 {
				input = input[:300] + "..."
			}
			out += searchMetaStyle.Render(input) + "\n"
		}
		return out
	case "tool_result":
		out := toolStyle.Render("[result]") + "\n"
		if block.TextContent != "" {
			text := block.TextContent
			if len(text) > 500 {
				text = text[:500] + "..."
			}
			out += searchMetaStyle.Render(text) + "\n"
		}
		return out
	default:
		if block.TextContent == "" {
			return ""
		}
		return block.TextContent + "\n"
	}
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.mode = listView
		m.currentSession = nil
		return m, nil

	case "y":
		if m.currentSession != nil {
			if err := clipboard.WriteAll(m.currentSession.SessionUUID); err == nil {
				m.statusMsg = "Session UUID copied to clipboard"
			}
		}
		return m, nil

	case "g":
		m.viewport.GotoTop()
		return m, nil

	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) viewDetail() string {
	helpText := helpStyle.Render("↑/↓ scroll • g/G top/bottom • y copy uuid • esc back • ctrl+c quit")
	if m.statusMsg != "" {
		helpText = statusStyle.Render(m.statusMsg)
	}
	return m.viewport.View() + "\n" + helpText
}
