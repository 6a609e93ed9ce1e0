package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Vdnsh/groq-qna/internal/chatstore"
	"github.com/Vdnsh/groq-qna/internal/cli/types"
	"github.com/Vdnsh/groq-qna/internal/cli/ui"
	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/domain/entity"
	"github.com/Vdnsh/groq-qna/internal/playback"
)

// UI configuration constants
const (
	defaultInputWidth      = 100
	defaultViewportWidth   = 100
	defaultViewportHeight  = 30
	defaultWindowWidth     = 100
	defaultWindowHeight    = 40
	inputCharLimit         = 4000
	inputHeightReserved    = 2
	statusHeightReserved   = 3
	minContentHeight       = 10
	sessionIDDisplayLength = 8

	askTimeout   = 2 * time.Minute
	pollInterval = 250 * time.Millisecond
)

// Style definitions
var (
	dimStyle    = ui.Styles.Dim
	boldStyle   = ui.Styles.Bold
	accentStyle = ui.Styles.Accent
	errorStyle  = ui.Styles.Error
	promptStyle = ui.Styles.Prompt
	ttsStyle    = ui.Styles.Speech
)

// Asker answers a conversation
type Asker interface {
	Ask(ctx context.Context, req *types.AskRequest) (*types.AskResponse, error)
}

// Speaker reads text aloud until done or stopped
type Speaker interface {
	Speak(ctx context.Context, text, voice string) error
	Stop()
}

// Deps are the collaborators of the chat TUI
type Deps struct {
	Store   *chatstore.Store
	API     Asker
	Speaker Speaker
	// Playing reports whether audio is currently coming out; optional
	Playing func() bool
	// Voice is the initially selected voice
	Voice string
	// AutoSpeak reads every new answer aloud
	AutoSpeak bool
}

// requestState represents whether a question is in flight
type requestState int

const (
	requestIdle requestState = iota
	requestWaiting
)

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	model chatModel
}

// NewChatProgram creates a new chat program for chat
func NewChatProgram(deps Deps, chat *entity.Chat) *ChatProgram {
	return &ChatProgram{model: initialModel(deps, chat)}
}

// Run starts the chat TUI program
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	if p.model.deps.Speaker != nil {
		p.model.deps.Speaker.Stop()
	}
	return err
}

// chatModel is the Bubble Tea model containing all chat interface state
type chatModel struct {
	deps Deps

	chat  *entity.Chat
	voice string
	// tts holds per-message speech state, keyed by message id
	tts map[string]*entity.TTSState
	// speakingID is the message currently being read aloud
	speakingID string

	// UI components
	input       textinput.Model
	contentView viewport.Model

	state   requestState
	pending string // question shown while waiting for its answer

	err error

	// Window dimensions
	width  int
	height int
}

// initialModel creates the initial chat model
func initialModel(deps Deps, chat *entity.Chat) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask anything..."
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultInputWidth
	input.Prompt = ""
	input.TextStyle = lipgloss.NewStyle()
	input.PromptStyle = lipgloss.NewStyle()

	contentViewport := viewport.New(defaultViewportWidth, defaultViewportHeight)

	voice := deps.Voice
	if voice == "" {
		voice = domain.DefaultVoice
	}

	m := chatModel{
		deps:        deps,
		chat:        chat,
		voice:       voice,
		tts:         make(map[string]*entity.TTSState),
		input:       input,
		contentView: contentViewport,
		state:       requestIdle,
		width:       defaultWindowWidth,
		height:      defaultWindowHeight,
	}
	m.refreshContent()
	return m
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Message type definitions
type (
	// answerMsg carries the chat after a question round trip
	answerMsg struct {
		chat *entity.Chat
		err  error
	}
	// speakDoneMsg is sent when a narration finishes or fails
	speakDoneMsg struct {
		messageID string
		err       error
	}
	// pollMsg refreshes playing/loading state while narrating
	pollMsg    struct{}
	newChatMsg struct {
		chat *entity.Chat
		err  error
	}
	voiceSavedMsg struct{ err error }
)

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyPress(msg)...)

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case answerMsg:
		cmds = append(cmds, m.handleAnswer(msg)...)

	case speakDoneMsg:
		m.handleSpeakDone(msg)

	case pollMsg:
		if m.speakingID != "" {
			m.syncPlaying()
			cmds = append(cmds, poll())
		}

	case newChatMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.chat = msg.chat
			m.err = nil
		}
		m.refreshContent()

	case voiceSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.refreshContent()
		}
	}

	if m.state != requestWaiting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m *chatModel) handleKeyPress(msg tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		if m.deps.Speaker != nil {
			m.deps.Speaker.Stop()
		}
		cmds = append(cmds, tea.Quit)

	case tea.KeyEnter:
		if m.state != requestWaiting {
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.startAsk(text)
				cmds = append(cmds, m.ask(text))
			}
		}

	case tea.KeyCtrlS:
		if cmd := m.speakLast(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.KeyCtrlX:
		m.stopSpeaking()

	case tea.KeyCtrlN:
		if m.state != requestWaiting {
			m.stopSpeaking()
			cmds = append(cmds, m.newChat())
		}

	case tea.KeyTab:
		cmds = append(cmds, m.cycleVoice())

	case tea.KeyUp:
		m.contentView.LineUp(1)

	case tea.KeyDown:
		m.contentView.LineDown(1)

	case tea.KeyPgUp:
		m.contentView.ViewUp()

	case tea.KeyPgDown:
		m.contentView.ViewDown()
	}

	return cmds
}

// handleWindowResize handles window size changes
func (m *chatModel) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := msg.Height - inputHeightReserved - statusHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	m.contentView.Width = msg.Width
	m.contentView.Height = contentHeight
	m.input.Width = msg.Width - 3

	m.refreshContent()
}

// startAsk shows the question while the answer is pending
func (m *chatModel) startAsk(text string) {
	m.input.Reset()
	m.pending = text
	m.err = nil
	m.state = requestWaiting
	m.refreshContent()
}

// ask appends the question, sends the whole history and appends the answer.
// The returned chat reflects whatever was stored, even on failure.
func (m *chatModel) ask(text string) tea.Cmd {
	store, api, chatID := m.deps.Store, m.deps.API, m.chat.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()

		if _, err := store.AppendMessage(ctx, chatID, entity.NewMessage{Role: entity.RoleUser, Content: text}); err != nil {
			return answerMsg{err: err}
		}
		chat, err := store.Get(ctx, chatID)
		if err != nil {
			return answerMsg{err: err}
		}

		resp, err := api.Ask(ctx, &types.AskRequest{Messages: history(chat)})
		if err != nil {
			return answerMsg{chat: chat, err: err}
		}

		if _, err := store.AppendMessage(ctx, chatID, entity.NewMessage{Role: entity.RoleAssistant, Content: resp.Answer}); err != nil {
			return answerMsg{chat: chat, err: err}
		}
		updated, err := store.Get(ctx, chatID)
		if err != nil {
			return answerMsg{chat: chat, err: err}
		}
		return answerMsg{chat: updated}
	}
}

// history converts the stored chat to the wire conversation
func history(chat *entity.Chat) []types.ChatMessage {
	out := make([]types.ChatMessage, 0, len(chat.Messages))
	for _, msg := range chat.Messages {
		out = append(out, types.ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}

// handleAnswer completes a question round trip
func (m *chatModel) handleAnswer(msg answerMsg) []tea.Cmd {
	m.state = requestIdle
	m.pending = ""
	if msg.chat != nil {
		m.chat = msg.chat
	}
	m.err = msg.err

	var cmds []tea.Cmd
	if msg.err == nil && m.deps.AutoSpeak {
		if cmd := m.speakLast(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	m.refreshContent()
	return cmds
}

// speakLast reads the most recent answer aloud
func (m *chatModel) speakLast() tea.Cmd {
	if m.deps.Speaker == nil {
		return nil
	}
	last, ok := m.chat.LastAssistantMessage()
	if !ok {
		return nil
	}

	// a newer narration supersedes the current one
	if m.speakingID != "" && m.speakingID != last.ID {
		m.setTTS(m.speakingID, entity.TTSIdle)
	}
	m.speakingID = last.ID
	m.setTTS(last.ID, entity.TTSLoading)
	m.refreshContent()

	speaker, voice := m.deps.Speaker, m.voice
	speak := func() tea.Msg {
		return speakDoneMsg{messageID: last.ID, err: speaker.Speak(context.Background(), last.Content, voice)}
	}
	if m.deps.Playing == nil {
		return speak
	}
	return tea.Batch(speak, poll())
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

// syncPlaying flips the active message between loading and playing
func (m *chatModel) syncPlaying() {
	state := m.tts[m.speakingID]
	if state == nil || m.deps.Playing == nil {
		return
	}
	next := entity.TTSLoading
	if m.deps.Playing() {
		next = entity.TTSPlaying
	}
	if state.Status != next {
		state.Status = next
		m.refreshContent()
	}
}

// handleSpeakDone records the outcome of a narration
func (m *chatModel) handleSpeakDone(msg speakDoneMsg) {
	switch {
	case msg.err == nil:
		m.setTTS(msg.messageID, entity.TTSReady)
	case errors.Is(msg.err, playback.ErrStopped):
		m.setTTS(msg.messageID, entity.TTSIdle)
	default:
		m.setTTS(msg.messageID, entity.TTSError)
		m.err = msg.err
	}
	if m.speakingID == msg.messageID {
		m.speakingID = ""
	}
	m.refreshContent()
}

func (m *chatModel) stopSpeaking() {
	if m.deps.Speaker == nil || m.speakingID == "" {
		return
	}
	m.deps.Speaker.Stop()
}

func (m *chatModel) setTTS(messageID string, status entity.TTSStatus) {
	state, ok := m.tts[messageID]
	if !ok {
		state = &entity.TTSState{}
		m.tts[messageID] = state
	}
	state.Status = status
	state.Voice = m.voice
}

// newChat creates a chat; the store makes it active
func (m *chatModel) newChat() tea.Cmd {
	store := m.deps.Store
	return func() tea.Msg {
		chat, err := store.Create(context.Background())
		return newChatMsg{chat: chat, err: err}
	}
}

// cycleVoice selects the next built-in voice and persists the choice
func (m *chatModel) cycleVoice() tea.Cmd {
	next := domain.Voices[0].ID
	for i, v := range domain.Voices {
		if v.ID == m.voice {
			next = domain.Voices[(i+1)%len(domain.Voices)].ID
			break
		}
	}
	m.voice = next

	store := m.deps.Store
	return func() tea.Msg {
		return voiceSavedMsg{err: store.SetSelectedVoice(context.Background(), next)}
	}
}

// refreshContent refreshes the display content
func (m *chatModel) refreshContent() {
	var b strings.Builder
	if m.chat != nil {
		for _, msg := range m.chat.Messages {
			m.renderMessage(&b, msg)
		}
	}
	if m.pending != "" {
		b.WriteString("\n")
		b.WriteString(boldStyle.Render("You"))
		b.WriteString("\n")
		b.WriteString(m.pending)
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Thinking..."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + errorText(m.err)))
	}

	display := b.String()
	if m.width > 0 {
		display = wrapText(display, m.width)
	}

	m.contentView.SetContent(display)
	m.contentView.GotoBottom()
}

func (m *chatModel) renderMessage(b *strings.Builder, msg entity.Message) {
	b.WriteString("\n")
	switch msg.Role {
	case entity.RoleUser:
		b.WriteString(boldStyle.Render("You"))
	case entity.RoleAssistant:
		b.WriteString(accentStyle.Render("Assistant"))
		if badge := ttsBadge(m.tts[msg.ID]); badge != "" {
			b.WriteString(" ")
			b.WriteString(ttsStyle.Render(badge))
		}
	default:
		b.WriteString(dimStyle.Render("System"))
	}
	b.WriteString("\n")
	b.WriteString(msg.Content)
	b.WriteString("\n")
}

// ttsBadge describes the speech state of a message, empty when idle
func ttsBadge(state *entity.TTSState) string {
	if state == nil {
		return ""
	}
	switch state.Status {
	case entity.TTSLoading:
		return "[synthesizing...]"
	case entity.TTSPlaying:
		return "[speaking]"
	case entity.TTSReady:
		return "[spoken]"
	case entity.TTSError:
		return "[speech failed]"
	}
	return ""
}

// errorText prefers the user-facing message of domain errors
func errorText(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de.UserMessage()
	}
	return err.Error()
}

// wrapText applies auto-wrapping to text, correctly handling wide character widths
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	var result strings.Builder

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.WriteString(wrapLine(line, maxWidth))
	}

	return result.String()
}

// wrapLine wraps a single line of text by display width
func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0

	for _, r := range line {
		runeW := runewidth.RuneWidth(r)

		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
			currentWidth = 0
		}

		currentLine.WriteRune(r)
		currentWidth += runeW
	}

	if currentLine.Len() > 0 {
		result.WriteString(currentLine.String())
	}

	return result.String()
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	title := entity.DefaultChatTitle
	id := ""
	if m.chat != nil {
		title = m.chat.Title
		id = m.chat.ID
		if len(id) > sessionIDDisplayLength {
			id = id[len(id)-sessionIDDisplayLength:]
		}
	}

	status := accentStyle.Render(title) + dimStyle.Render(fmt.Sprintf(" • %s • voice %s", id, m.voice))
	if m.state == requestWaiting {
		status += dimStyle.Render(" • waiting for answer...")
	}

	content := m.contentView.View()

	var inputView string
	if m.state == requestWaiting {
		inputView = dimStyle.Render("> ") + dimStyle.Render("waiting for answer...")
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	help := dimStyle.Render("Enter send • ctrl+s speak • ctrl+x stop • tab voice • ctrl+n new chat • ↑↓ scroll • Esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, status, "", content, "", inputView, help)
}
