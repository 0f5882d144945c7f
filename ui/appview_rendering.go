package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"chatwave/chat"
	"chatwave/config"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

const deliveryCursor = "▋"

func (a AppView) mainWidth() int {
	return max(a.width-sidebarWidth, 20)
}

// updateViewportContent redraws the current chat. Assistant messages use
// their cached markdown render when it matches the content and width.
func (a *AppView) updateViewportContent(gotoBottom bool) {
	c, ok := a.dataModel.Store.CurrentChat()
	if !ok || len(c.Messages) == 0 {
		a.viewport.SetContent(a.renderWelcome())
		return
	}

	typing := a.dataModel.Orchestrator.Typing(c.ID)
	width := a.mainWidth()

	var content strings.Builder
	for i, msg := range c.Messages {
		timestamp := DimStyle.Render(msg.CreatedAt.Local().Format("[15:04]"))

		if msg.Role == chat.RoleUser {
			role := UserStyle.Render("You")
			content.WriteString(formatUserMessage(timestamp, role, wordWrap(msg.Content, width-4)))
			continue
		}

		role := AssistantStyle.Render("Assistant")
		body := a.assistantBody(msg, width)
		if msg.Content == "" && typing && i == len(c.Messages)-1 {
			body = a.typingSpinner.View() + DimStyle.Render(" typing...")
		}
		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, body))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a AppView) assistantBody(msg chat.Message, width int) string {
	if a.delivering[msg.ID] {
		return wordWrap(msg.Content, width-4) + deliveryCursor
	}
	if r, ok := a.rendered[msg.ID]; ok && r.source == msg.Content && r.width == width {
		return r.text
	}
	return wordWrap(msg.Content, width-4)
}

// renderPending starts markdown renders for assistant messages of the
// current chat whose cache entry is missing or stale
func (a AppView) renderPending() tea.Cmd {
	c, ok := a.dataModel.Store.CurrentChat()
	if !ok {
		return nil
	}

	width := a.mainWidth()
	var cmds []tea.Cmd
	for _, msg := range c.Messages {
		if msg.Role != chat.RoleAssistant || msg.Content == "" || a.delivering[msg.ID] {
			continue
		}
		if r, ok := a.rendered[msg.ID]; ok && r.source == msg.Content && r.width == width {
			continue
		}
		cmds = append(cmds, renderMarkdownAsync(msg.ID, msg.Content, width))
	}
	return tea.Batch(cmds...)
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = fixMarkdownLinks(rendered)
	return frameCodeBlocks(rendered, width)
}

// preprocessLinks turns [text](url) into a bare url
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode swaps the blue-background inline code style for red text
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

// fixMarkdownLinks colors plain URLs red outside code blocks
func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the ┃ gutter of rendered code blocks with a
// [code] rule above and a plain rule below
func frameCodeBlocks(s string, width int) string {
	darkGray := "\x1b[90m"
	reset := "\x1b[0m"
	ruleLen := max(width-4, 8)

	closeBlock := func(result, block []string) []string {
		result = append(result, block...)
		result = append(result, "", darkGray+strings.Repeat("━", ruleLen)+reset, "")
		return result
	}

	var result, block []string
	inCodeBlock := false

	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, "┃") {
			if !inCodeBlock {
				inCodeBlock = true
				block = nil

				label := "[code]"
				leftLen := max((ruleLen-len(label))/2, 0)
				rightLen := max(ruleLen-len(label)-leftLen, 0)
				border := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset
				result = append(result, "", border, "")
			}
			block = append(block, stripCodeBlockPrefix(line))
			continue
		}

		if inCodeBlock {
			result = closeBlock(result, block)
			block = nil
			inCodeBlock = false
		}
		result = append(result, line)
	}

	if inCodeBlock && len(block) > 0 {
		result = closeBlock(result, block)
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	_, after, found := strings.Cut(line, "┃")
	if !found {
		return line
	}
	return strings.TrimPrefix(after, " ")
}

// renderMarkdownAsync renders one assistant message off the update loop
func renderMarkdownAsync(messageID, content string, width int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		// Autolink stays off so terminals can detect plain URLs themselves
		ext := markdown.Extensions() &^ parser.Autolink
		p := parser.NewWithExtensions(ext)
		r := markdown.NewRenderer(max(width-4, 10), 0)
		doc := p.Parse([]byte(preprocessLinks(content)))
		rendered := gomarkdown.Render(doc, r)

		processed := postProcessMarkdown(string(rendered), width)
		config.Logf("[Render] message %s: %d chars in %v", messageID, len(content), time.Since(start))

		return markdownRenderedMsg{
			MessageID: messageID,
			Source:    content,
			Width:     width,
			Rendered:  strings.TrimRight(processed, "\n"),
		}
	}
}
