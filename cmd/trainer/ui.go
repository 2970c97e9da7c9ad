package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reservodojo/trainer/internal/generator"
	"github.com/reservodojo/trainer/internal/logger"
	"github.com/reservodojo/trainer/internal/render"
	"github.com/reservodojo/trainer/internal/tasklog"
	"github.com/reservodojo/trainer/pkg/booking"
	"github.com/reservodojo/trainer/pkg/property"
)

const placeholderText = "Booking number from your PMS..."

var (
	taskPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

// SessionUI is the BubbleTea model that runs the training session loop:
// show task, await the trainee's outcome, log it, generate the next task.
// https://github.com/charmbracelet/bubbletea
type SessionUI struct {
	model     *property.Model
	gen       *generator.Generator
	logWriter *tasklog.Writer
	logger    *slog.Logger

	history []booking.Scenario
	current *booking.Scenario

	taskViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int

	status string
	fatal  error

	showQuitModal bool

	finished int
	skipped  int
}

// NewSessionUI generates the first task up front so a structurally unusable
// configuration aborts before the terminal enters the alt screen.
func NewSessionUI(model *property.Model, gen *generator.Generator, logWriter *tasklog.Writer, logger *slog.Logger) (SessionUI, error) {
	ta := textarea.New()
	ta.Placeholder = placeholderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 60
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	taskVp := viewport.New(50, 20)
	taskVp.MouseWheelEnabled = true
	metaVp := viewport.New(20, 20)

	ui := SessionUI{
		model:        model,
		gen:          gen,
		logWriter:    logWriter,
		logger:       logger,
		textarea:     ta,
		taskViewport: taskVp,
		metaViewport: metaVp,
	}
	if err := ui.nextTask(); err != nil {
		return SessionUI{}, err
	}
	return ui, nil
}

// nextTask generates the next scenario and appends it to the session
// history.
func (m *SessionUI) nextTask() error {
	s, err := m.gen.Generate(m.history)
	if err != nil {
		return err
	}
	m.history = append(m.history, *s)
	m.current = s
	return nil
}

func (m *SessionUI) writeTaskContent() {
	taskWidth := m.taskViewport.Width - 6
	if taskWidth < 20 {
		taskWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("FRONT DESK TRAINER") + "\n\n")
	content.WriteString(fmt.Sprintf("Task %d\n\n", m.current.Seq))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", taskWidth-6)) + "\n\n")
	content.WriteString(taskStyle.Render(render.TaskText(m.current, taskWidth)))
	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Enter this into your PMS, then type the booking number below and press Enter.\nUse /skip to pass, /copy to copy the task, /help for more.") + "\n")

	if m.status != "" {
		style := statusStyle
		if strings.HasPrefix(m.status, "Warning") || strings.HasPrefix(m.status, "Could not") {
			style = errorStyle
		}
		content.WriteString("\n" + style.Render(m.status) + "\n")
	}

	m.taskViewport.SetContent(content.String())
	m.taskViewport.GotoTop()
}

func (m *SessionUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Tasks:\n")
	content.WriteString(fmt.Sprintf("%d finished, %d skipped\n\n", m.finished, m.skipped))

	content.WriteString("Property:\n")
	content.WriteString(fmt.Sprintf("%d guests\n%d room categories\n", len(m.model.Guests), len(m.model.RoomCategories)))
	content.WriteString(fmt.Sprintf("window %s\nto %s\n\n", m.model.BookingWindow.EarliestArrival, m.model.BookingWindow.LatestArrival))

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Finish task\n")
	content.WriteString("• /skip: Skip task\n")
	content.WriteString("• /copy: Copy task\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	m.metaViewport.SetContent(content.String())
}

func (m SessionUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m SessionUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.taskViewport, vpCmd = m.taskViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		taskWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - taskWidth - 6

		m.taskViewport.Width = taskWidth - 2
		m.taskViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(taskWidth - 4)

		m.ready = true
		m.writeTaskContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			return m.finishTask(input)
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.taskViewport, vpCmd = m.taskViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// finishTask logs the outcome and moves on. A failed log write warns and
// continues: only this task's record is lost, the session is intact.
func (m SessionUI) finishTask(bookingNumber string) (tea.Model, tea.Cmd) {
	if len(bookingNumber) < 3 {
		m.status = "Please enter a valid booking number (at least 3 characters)."
		m.writeTaskContent()
		return m, nil
	}

	now := time.Now()
	outcome := tasklog.Outcome{BookingNumber: bookingNumber, Status: tasklog.StatusFinished}
	m.status = fmt.Sprintf("Saved ✓ %s", now.Format("15:04:05"))

	if err := m.logWriter.Append(tasklog.NewRecord(m.current, outcome, now)); err != nil {
		logger.WithError(m.logger, err).Warn("task record not persisted", "task_id", m.current.ID)
		m.status = "Warning: this task's record could not be written. The session continues."
	} else if _, err := m.logWriter.WriteArtifact(m.current, bookingNumber, now); err != nil {
		logger.WithError(m.logger, err).Warn("task artifact not persisted", "task_id", m.current.ID)
		m.status = "Warning: the task file could not be written. The session continues."
	}

	m.finished++
	return m.advance()
}

func (m SessionUI) skipTask() (tea.Model, tea.Cmd) {
	now := time.Now()
	outcome := tasklog.Outcome{Status: tasklog.StatusSkipped}
	m.status = "Task skipped."

	if err := m.logWriter.Append(tasklog.NewRecord(m.current, outcome, now)); err != nil {
		logger.WithError(m.logger, err).Warn("task record not persisted", "task_id", m.current.ID)
		m.status = "Warning: this task's record could not be written. The session continues."
	}

	m.skipped++
	return m.advance()
}

// advance generates the next task. Retry exhaustion means the configuration
// has no legal solution, so the session aborts with a clear message.
func (m SessionUI) advance() (tea.Model, tea.Cmd) {
	if err := m.nextTask(); err != nil {
		m.fatal = err
		return m, tea.Quit
	}
	m.textarea.Reset()
	m.writeTaskContent()
	m.writeMetadata()
	return m, nil
}

func (m SessionUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/skip":
		return m.skipTask()

	case "/copy":
		if err := clipboard.WriteAll(render.TaskText(m.current, 0)); err != nil {
			m.status = "Could not copy to clipboard: " + err.Error()
		} else {
			m.status = "Task copied to clipboard."
		}
		m.writeTaskContent()

	case "/help":
		m.status = "Finish the task in your PMS, enter the booking number and press Enter. " +
			"/skip passes without a booking number, /copy puts the task on the clipboard, Ctrl+C quits."
		m.writeTaskContent()

	default:
		m.status = "Unknown command: " + cmd
		m.writeTaskContent()
	}

	return m, nil
}

func (m SessionUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m SessionUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("End Session?"))
	content.WriteString("\n\n")
	content.WriteString("The current task is abandoned and no record is written for it.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue training"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m SessionUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	taskWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - taskWidth - 6

	taskPanel := taskPanelStyle.Width(taskWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.taskViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", taskWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, taskPanel, metaPanel)
}
