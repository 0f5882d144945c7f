package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatwave/chat"
	"chatwave/config"
	appmodel "chatwave/model"
	"chatwave/provider"
)

const sidebarWidth = 32

type focusArea int

const (
	focusComposer focusArea = iota
	focusSidebar
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model
	kb        *config.KeyBindingsConfig

	// UI Components
	viewport      viewport.Model
	textarea      textarea.Model
	searchInput   textinput.Model
	typingSpinner spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	focus     focusArea
	showHelp  bool
	showAbout bool

	// Sidebar
	selectedIdx int
	searchMode  bool

	// Rendered markdown keyed by message id. Shared across copies of AppView.
	rendered map[string]renderedMessage

	// Turns between SendMessage and TurnDoneMsg
	activeTurns int
	// Placeholder ids currently being typed out
	delivering map[string]bool

	// Delete confirmation state
	confirmDelete *chat.SessionSummary

	// Acknowledge modal (for warnings/errors requiring only acknowledgement)
	showAcknowledgeModal  bool
	acknowledgeModalTitle string
	acknowledgeModalMsg   string
	acknowledgeModalType  ModalType

	login loginState

	models modelSelector

	flash    string
	flashSeq int
}

type renderedMessage struct {
	source string
	width  int
	text   string
}

func NewAppView(dataModel *appmodel.Model) AppView {
	kb := config.DefaultKeybindings()
	if dataModel.Config != nil && dataModel.Config.Keybindings != nil {
		kb = dataModel.Config.Keybindings
	}

	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone sends
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	searchInput := textinput.New()
	searchInput.Prompt = "Search: "
	searchInput.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	return AppView{
		dataModel:     dataModel,
		kb:            kb,
		textarea:      ta,
		viewport:      viewport.New(0, 0),
		searchInput:   searchInput,
		typingSpinner: sp,
		rendered:      make(map[string]renderedMessage),
		delivering:    make(map[string]bool),
		login:         newLoginState(),
		models:        newModelSelector(),
	}
}

func (a AppView) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}

	if !a.dataModel.NeedsLogin() {
		cmds = append(cmds, a.dataModel.FetchSessionList(), a.dataModel.ResumeSession())
	}
	if a.dataModel.Provider != nil {
		cmds = append(cmds, provider.PingProvider(a.dataModel.Provider))
	}

	return tea.Batch(cmds...)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading chatwave..."
	}

	if a.dataModel.NeedsLogin() {
		return a.renderLogin()
	}

	if a.showAcknowledgeModal {
		return RenderAcknowledgeModal(
			a.acknowledgeModalTitle,
			a.acknowledgeModalMsg,
			a.acknowledgeModalType,
			a.width,
			a.height,
		)
	}

	if a.confirmDelete != nil {
		warningText := lipgloss.NewStyle().Foreground(dangerColor).Render("This action cannot be undone.")
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   "⚠ Delete Chat",
			Message: fmt.Sprintf("Are you sure you want to delete:\n\n\"%s\"\n\n%s", a.confirmDelete.Title, warningText),
		}, a.width, a.height)
	}

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.models.open {
		return renderModelSelector(a.models, a.dataModel.Provider.GetModel(), a.width, a.height)
	}

	if a.showAbout {
		return renderAboutModal(a, a.width, a.height, a.dataModel.Version, a.dataModel.License)
	}

	sidebar := renderSidebar(sidebarParams{
		Groups:      chat.GroupSessions(a.filteredSessions(), timeNow()),
		SelectedID:  a.selectedSessionID(),
		CurrentID:   a.currentSidebarID(),
		Focused:     a.focus == focusSidebar,
		SearchMode:  a.searchMode,
		SearchInput: a.searchInput,
		Width:       sidebarWidth,
		Height:      a.height,
	})

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderTitle(),
		"",
		a.viewport.View(),
		a.textarea.View(),
		a.renderStatusBar(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

func (a AppView) renderTitle() string {
	appText := AssistantStyle.Render("chatwave")

	title := chat.DefaultTitle
	if c, ok := a.dataModel.Store.CurrentChat(); ok {
		title = c.Title
	}
	chatText := UserStyle.Render(fmt.Sprintf(" - %s", title))

	mode := "online"
	if a.dataModel.Provider != nil {
		mode = a.dataModel.Provider.GetDisplayName()
	} else if a.dataModel.Offline() {
		mode = "simulated"
	}
	modeText := TitleStyle.Render(fmt.Sprintf(" - %s", mode))

	userText := ""
	if u := a.dataModel.User; u != nil && u.Email != "" {
		userText = DimStyle.Render(" | " + u.Email)
	}

	return appText + modeText + chatText + userText
}

func (a AppView) renderStatusBar() string {
	if a.flash != "" {
		return StatusStyle.Render(a.flash)
	}

	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	statusBar := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s  Enter %s  %s %s",
		a.kb.DisplayActionKey("quit"), descStyle.Render("Quit"),
		a.kb.DisplayActionKey("new_chat"), descStyle.Render("New"),
		a.kb.DisplayActionKey("focus_toggle"), descStyle.Render("Sidebar"),
		a.kb.DisplayActionKey("search_chats"), descStyle.Render("Search"),
		a.kb.DisplayActionKey("delete_chat"), descStyle.Render("Delete"),
		descStyle.Render("Send"),
		a.kb.DisplayActionKey("help"), descStyle.Render("Help"),
	)
	return StatusStyle.Render(statusBar)
}

// filteredSessions returns the sidebar entries, narrowed by the search query
func (a AppView) filteredSessions() []chat.SessionSummary {
	sessions := a.dataModel.SidebarSessions()
	if a.searchMode {
		return chat.FilterSessions(sessions, a.searchInput.Value())
	}
	return sessions
}

// visibleSessions is the sidebar in display order (grouped by age)
func (a AppView) visibleSessions() []chat.SessionSummary {
	var out []chat.SessionSummary
	for _, g := range chat.GroupSessions(a.filteredSessions(), timeNow()) {
		out = append(out, g.Sessions...)
	}
	return out
}

func (a AppView) selectedSession() (chat.SessionSummary, bool) {
	sessions := a.visibleSessions()
	if a.selectedIdx < 0 || a.selectedIdx >= len(sessions) {
		return chat.SessionSummary{}, false
	}
	return sessions[a.selectedIdx], true
}

func (a AppView) selectedSessionID() string {
	if a.focus != focusSidebar {
		return ""
	}
	s, _ := a.selectedSession()
	return s.ID
}

// currentSidebarID is the sidebar id of the current chat: its backend
// session when it has one, else its local id
func (a AppView) currentSidebarID() string {
	c, ok := a.dataModel.Store.CurrentChat()
	if !ok {
		return ""
	}
	if c.HasRemoteSession() {
		return c.RemoteSessionID
	}
	return c.ID
}

func (a *AppView) clampSelection() {
	n := len(a.visibleSessions())
	if a.selectedIdx >= n {
		a.selectedIdx = n - 1
	}
	if a.selectedIdx < 0 {
		a.selectedIdx = 0
	}
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showAbout = false
	a.showAcknowledgeModal = false
	a.confirmDelete = nil
	a.models.close()
}

func (a *AppView) showAcknowledge(title, message string, modalType ModalType) {
	a.showAcknowledgeModal = true
	a.acknowledgeModalTitle = title
	a.acknowledgeModalMsg = message
	a.acknowledgeModalType = modalType
}

func (a *AppView) setFocus(f focusArea) {
	a.focus = f
	if f == focusComposer {
		a.searchInput.Blur()
		a.textarea.Focus()
		return
	}
	a.textarea.Blur()
	a.clampSelection()
}
