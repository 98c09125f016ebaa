package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"adbpull/internal/app"
	"adbpull/internal/domain"
)

// Phase represents the current state of the TUI
type Phase int

const (
	PhaseListing Phase = iota
	PhaseCopying
	PhaseDone
	PhaseError
)

type (
	RootPlannedMsg struct {
		Plan domain.RootPlan
	}
	RootFailedMsg struct {
		Failure domain.RootFailure
	}
	CopyProgressMsg struct {
		Current int
		Total   int
		Result  domain.TransferResult
	}
	DoneMsg struct {
		Report app.Report
	}
	ErrorMsg struct {
		Err error
	}
	tickMsg time.Time
)

type Config struct {
	Roots   []string
	Dest    string
	Serial  string
	Verbose bool
}

type rootLine struct {
	root   string
	found  int
	toCopy int
	err    error
}

// Model is the main TUI model
type Model struct {
	config      Config
	Phase       Phase
	spinner     spinner.Model
	progress    progress.Model
	roots       []rootLine
	copyCurrent int
	copyTotal   int
	currentFile string
	bytesCopied uint64
	failures    []domain.TransferResult
	Report      app.Report
	Err         error
	Quitting    bool
	width       int
}

func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		config:   cfg,
		Phase:    PhaseListing,
		spinner:  s,
		progress: p,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(msg.Width-20, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.Quitting = true
			return m, tea.Quit
		}

	case RootPlannedMsg:
		m.roots = append(m.roots, rootLine{
			root:   msg.Plan.Root,
			found:  msg.Plan.Found,
			toCopy: len(msg.Plan.ToCopy()),
		})
		return m, nil

	case RootFailedMsg:
		m.roots = append(m.roots, rootLine{root: msg.Failure.Root, err: msg.Failure.Err})
		return m, nil

	case CopyProgressMsg:
		m.Phase = PhaseCopying
		m.copyCurrent = msg.Current
		m.copyTotal = msg.Total
		m.currentFile = msg.Result.File.RelativePath
		if msg.Result.Status == domain.StatusFailed {
			m.failures = append(m.failures, msg.Result)
		} else {
			m.bytesCopied += msg.Result.File.Size
		}
		return m, nil

	case DoneMsg:
		m.Phase = PhaseDone
		m.Report = msg.Report
		return m, tea.Quit

	case ErrorMsg:
		m.Phase = PhaseError
		m.Err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.Phase == PhaseListing || m.Phase == PhaseCopying {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case tickMsg:
		if m.Phase == PhaseListing || m.Phase == PhaseCopying {
			var cmds []tea.Cmd
			if m.copyTotal > 0 {
				cmds = append(cmds, m.progress.SetPercent(float64(m.copyCurrent)/float64(m.copyTotal)))
			}
			cmds = append(cmds, tickCmd())
			return m, tea.Batch(cmds...)
		}
	}

	return m, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderRoots())

	switch m.Phase {
	case PhaseListing:
		b.WriteString(fmt.Sprintf("\n%s Listing files on the device...\n", m.spinner.View()))
	case PhaseCopying:
		b.WriteString(m.renderCopying())
	case PhaseDone:
		b.WriteString(m.renderCompletion())
	case PhaseError:
		b.WriteString(m.renderError())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(iconPhone + " adbpull")
	subtitle := subtitleStyle.Render("Pull files from an Android device")

	device := "first attached device"
	if m.config.Serial != "" {
		device = m.config.Serial
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		dimStyle.Render(fmt.Sprintf("%s Device: %s", iconPhone, device)),
		dimStyle.Render(fmt.Sprintf("%s Target: %s", iconFolder, shortenPath(m.config.Dest))),
	)
}

func (m Model) renderRoots() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Sources"))
	b.WriteString("\n")

	for _, r := range m.roots {
		if r.err != nil {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n", errorStyle.Render(iconError), fileNameStyle.Render(r.root), errorStyle.Render(r.err.Error())))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s  %s\n",
			successStyle.Render(iconSuccess),
			fileNameStyle.Render(r.root),
			dimStyle.Render(fmt.Sprintf("%d found, %d to copy", r.found, r.toCopy)),
		))
	}
	pending := len(m.config.Roots) - len(m.roots)
	if pending > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s %d pending", iconSkipped, pending)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderCopying() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Copying Files"))
	b.WriteString("\n\n")

	percent := 0.0
	if m.copyTotal > 0 {
		percent = float64(m.copyCurrent) / float64(m.copyTotal)
	}

	b.WriteString(fmt.Sprintf("  %s Copying...\n\n", m.spinner.View()))
	b.WriteString(fmt.Sprintf("  %s\n", m.progress.ViewAs(percent)))
	b.WriteString(fmt.Sprintf("  %s %s\n",
		countStyle.Render(fmt.Sprintf("%d/%d files", m.copyCurrent, m.copyTotal)),
		dimStyle.Render(fmt.Sprintf("(%.0f%%, %s)", percent*100, humanize.Bytes(m.bytesCopied))),
	))

	if m.currentFile != "" {
		b.WriteString(fmt.Sprintf("\n  %s %s\n", iconArrow, fileNameStyle.Render(m.currentFile)))
	}
	if len(m.failures) > 0 {
		b.WriteString(fmt.Sprintf("\n  %s\n", warningStyle.Render(fmt.Sprintf("%s %d failed so far", iconWarning, len(m.failures)))))
	}
	return b.String()
}

func (m Model) renderCompletion() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Summary"))
	b.WriteString("\n\n")

	s := m.Report.Summary
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Copied:"), statValueStyle.Render(fmt.Sprintf("%d files (%s)", s.Copied, humanize.Bytes(s.BytesCopied)))))
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Already present:"), dimStyle.Render(fmt.Sprintf("%s %d", iconSkipped, s.SkippedExisting))))
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Excluded:"), dimStyle.Render(fmt.Sprintf("%s %d", iconSkipped, s.SkippedExcluded))))
	if s.Failed > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprintf("%s %d", iconError, s.Failed))))
	}
	if s.RootsFailed > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Unreachable roots:"), errorStyle.Render(fmt.Sprintf("%s %d", iconError, s.RootsFailed))))
	}

	if s.OK() {
		b.WriteString(highlightBoxStyle.Render(successStyle.Render(iconSuccess + " Copy completed successfully!")))
	}
	return b.String()
}

func (m Model) renderError() string {
	msg := errorStyle.Render(fmt.Sprintf("%s Error: %s", iconError, m.Err.Error()))
	return highlightBoxStyle.Copy().
		BorderForeground(errorColor).
		Render(msg)
}

func (m Model) renderHelp() string {
	var help string
	switch m.Phase {
	case PhaseListing:
		help = "Press q to quit"
	case PhaseCopying:
		help = "Press q to stop after the current file"
	default:
		help = ""
	}
	return helpStyle.Render(help)
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
