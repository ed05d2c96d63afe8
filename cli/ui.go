package cli

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor   = lipgloss.Color("#5865F2")
	secondaryColor = lipgloss.Color("#99AAB5")
	successColor   = lipgloss.Color("#57F287")
	errorColor     = lipgloss.Color("#ED4245")
	warnColor      = lipgloss.Color("#FEE75C")
	dimColor       = lipgloss.Color("#72767D")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	progressStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(warnColor)

	hintStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	topicStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	clientStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#99AAB5"))
)

const (
	iconCheck      = "✓"
	iconCross      = "✗"
	iconTopic      = "◎"
	iconClient     = "◇"
	iconTransition = "▸"
	iconWarning    = "▲"
	iconEngine     = "⬡"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// UI renders styled terminal output for the serve command, adapted from
// the teacher's blueprint CLI (same spinner/palette pattern, topic-state-
// machine vocabulary instead of chat vocabulary).
type UI struct {
	mu       sync.Mutex
	spinning bool
	spinMsg  string
	spinDone chan struct{}
}

func NewUI() *UI { return &UI{} }

func (u *UI) Header(icon, title string) {
	fmt.Println()
	fmt.Printf("%s %s\n", icon, titleStyle.Render(title))
}

func (u *UI) Info(label, value string) {
	fmt.Printf("  %s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func (u *UI) Blank() { fmt.Println() }

func (u *UI) Step(message string) {
	fmt.Printf("%s %s\n", progressStyle.Render(iconTransition), message)
}

func (u *UI) StartSpinner(message string) {
	u.mu.Lock()
	if u.spinning {
		u.mu.Unlock()
		return
	}
	u.spinning = true
	u.spinMsg = message
	u.spinDone = make(chan struct{})
	u.mu.Unlock()

	go func() {
		i := 0
		for {
			select {
			case <-u.spinDone:
				fmt.Print("\r\033[K")
				return
			default:
				u.mu.Lock()
				msg := u.spinMsg
				u.mu.Unlock()
				frame := progressStyle.Render(spinnerFrames[i])
				fmt.Printf("\r%s %s", frame, msg)
				i = (i + 1) % len(spinnerFrames)
				time.Sleep(80 * time.Millisecond)
			}
		}
	}()
}

func (u *UI) UpdateSpinner(message string) {
	u.mu.Lock()
	u.spinMsg = message
	u.mu.Unlock()
}

func (u *UI) StopSpinner(message string, duration time.Duration) {
	u.mu.Lock()
	if !u.spinning {
		u.mu.Unlock()
		return
	}
	close(u.spinDone)
	u.spinning = false
	u.mu.Unlock()

	time.Sleep(100 * time.Millisecond)
	durStr := subtitleStyle.Render(fmt.Sprintf("(%s)", duration.Round(time.Millisecond)))
	fmt.Printf("%s %s %s\n", successStyle.Render(iconCheck), message, durStr)
}

func (u *UI) StopSpinnerError(message string) {
	u.mu.Lock()
	if !u.spinning {
		u.mu.Unlock()
		return
	}
	close(u.spinDone)
	u.spinning = false
	u.mu.Unlock()

	time.Sleep(100 * time.Millisecond)
	fmt.Printf("%s %s\n", errorStyle.Render(iconCross), message)
}

func (u *UI) Success(message string) {
	fmt.Println()
	fmt.Printf("%s %s\n", successStyle.Render(iconCheck), message)
}

func (u *UI) Error(message string) {
	fmt.Println()
	fmt.Printf("%s %s\n", errorStyle.Render(iconCross), message)
}

func (u *UI) Warn(message string) {
	fmt.Printf("%s %s\n", warnStyle.Render(iconWarning), message)
}

func (u *UI) Hint(message string) {
	fmt.Printf("  %s\n", hintStyle.Render(message))
}

func (u *UI) Divider() {
	fmt.Println(subtitleStyle.Render(strings.Repeat("─", 50)))
}

func (u *UI) Summary(items [][2]string) {
	fmt.Println()
	u.Divider()
	for _, item := range items {
		u.Info(item[0], item[1])
	}
	u.Divider()
}

// TopicRow prints a registered topic's name, type tag, and version.
func (u *UI) TopicRow(name, typeTag, version string) {
	fmt.Printf("  %s %-35s %s\n", iconTopic, topicStyle.Render(name), subtitleStyle.Render("["+typeTag+" v"+version+"]"))
}

// ClientRow prints a connected client's id.
func (u *UI) ClientRow(id string) {
	fmt.Printf("  %s %s\n", iconClient, clientStyle.Render(id))
}

// TransitionRow prints a completed transition's id, source, and size.
func (u *UI) TransitionRow(id, source string, changeCount int) {
	fmt.Printf("  %s %s %s\n", iconTransition, subtitleStyle.Render(id), labelStyle.Render(fmt.Sprintf("from %s (%d changes)", source, changeCount)))
}
