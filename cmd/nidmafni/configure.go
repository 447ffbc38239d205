package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nidmafni/internal/config"
)

// question is one configure prompt, prefilled with the current value.
// check, when set, must accept the answer before the prompt moves on.
type question struct {
	key    string
	prompt string
	value  string
	check  func(string) error
}

const (
	keyAFNIBinary   = "afni_binary"
	keyInfoBinary   = "info_binary"
	keyPUncorrected = "p_uncorrected"
	keyPCorrected   = "p_corrected"
	keyNIDMVersion  = "nidm_version"
)

func settingsQuestions(s *config.Settings) []question {
	return []question{
		{keyAFNIBinary, "afni binary", s.AFNI.Binary, checkNotBlank},
		{keyInfoBinary, "3dinfo binary", s.AFNI.InfoBinary, checkNotBlank},
		{keyPUncorrected, "Default uncorrected p-value", strconv.FormatFloat(s.Defaults.PUncorrected, 'g', -1, 64), checkPValue},
		{keyPCorrected, "Default corrected p-value", strconv.FormatFloat(s.Defaults.PCorrected, 'g', -1, 64), checkPValue},
		{keyNIDMVersion, "NIDM-Results version", s.Defaults.NIDMVersion, checkNotBlank},
	}
}

func checkNotBlank(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("a value is required")
	}
	return nil
}

func checkPValue(v string) error {
	p, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", v)
	}
	if !config.ValidPValue(p) {
		return fmt.Errorf("%g is not between 0 and 1", p)
	}
	return nil
}

// applyAnswers copies prompt answers into s. Blank answers keep the current
// value.
func applyAnswers(s *config.Settings, answers map[string]string) error {
	for key, raw := range answers {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		switch key {
		case keyAFNIBinary:
			s.AFNI.Binary = v
		case keyInfoBinary:
			s.AFNI.InfoBinary = v
		case keyPUncorrected, keyPCorrected:
			p, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if key == keyPUncorrected {
				s.Defaults.PUncorrected = p
			} else {
				s.Defaults.PCorrected = p
			}
		case keyNIDMVersion:
			s.Defaults.NIDMVersion = v
		default:
			return fmt.Errorf("unknown setting %q", key)
		}
	}
	return s.Validate()
}

func newConfigureCmd(a *app) *cobra.Command {
	var nonInteractive bool
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Set default thresholds and AFNI tool locations",
		Long: `Prompt for default thresholds and AFNI tool locations and save them to
the settings file. Press enter to keep the value shown.

With --non-interactive the current settings (file plus environment) are
written as they are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a.settings
			if !nonInteractive {
				answers, err := promptQuestions(settingsQuestions(&s))
				if err != nil {
					return fmt.Errorf("prompt: %w", err)
				}
				if err := applyAnswers(&s, answers); err != nil {
					return err
				}
			} else if err := s.Validate(); err != nil {
				return err
			}
			if err := s.Save(a.configPath); err != nil {
				return err
			}
			a.logger.Debug("settings saved", zap.String("path", a.configPath))
			fmt.Fprintf(cmd.OutOrStdout(), "saved settings to %s\n", a.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "save current settings without prompting")
	return cmd
}

// promptModel asks the questions in order through a single text input.
// An answer is only recorded once its check passes; a rejected answer keeps
// the prompt on the same question and shows why. Shift+Tab goes back.
type promptModel struct {
	questions []question
	cur       int
	input     textinput.Model
	given     map[string]string
	err       error
	done      bool
	cancelled bool
}

func newPromptModel(questions []question) promptModel {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Focus()
	m := promptModel{
		questions: questions,
		input:     ti,
		given:     make(map[string]string, len(questions)),
	}
	m.load()
	return m
}

// load puts the current question's answer, or its current value, into the input.
func (m *promptModel) load() {
	if m.cur >= len(m.questions) {
		return
	}
	q := m.questions[m.cur]
	m.input.Placeholder = q.value
	if v, ok := m.given[q.key]; ok {
		m.input.SetValue(v)
	} else {
		m.input.SetValue(q.value)
	}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.questions) == 0 {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyShiftTab:
		if m.cur > 0 {
			m.cur--
			m.err = nil
			m.load()
		}
		return m, nil
	case tea.KeyEnter:
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit checks the typed answer. A blank answer stands for the current value.
func (m promptModel) submit() (tea.Model, tea.Cmd) {
	q := m.questions[m.cur]
	v := strings.TrimSpace(m.input.Value())
	if v == "" {
		v = q.value
	}
	if q.check != nil {
		if err := q.check(v); err != nil {
			m.err = err
			return m, nil
		}
	}
	m.err = nil
	m.given[q.key] = v
	if m.cur == len(m.questions)-1 {
		m.done = true
		return m, tea.Quit
	}
	m.cur++
	m.load()
	return m, textinput.Blink
}

func (m promptModel) View() string {
	if m.done || m.cancelled || len(m.questions) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] %s: %s\n", m.cur+1, len(m.questions), m.questions[m.cur].prompt, m.input.View())
	if m.err != nil {
		fmt.Fprintf(&b, "  invalid: %v\n", m.err)
	}
	return b.String()
}

// answers returns the accepted answers keyed by question key.
func (m promptModel) answers() map[string]string {
	out := make(map[string]string, len(m.given))
	for k, v := range m.given {
		out[k] = v
	}
	return out
}

// promptQuestions runs the TUI and returns answers keyed by question key.
func promptQuestions(questions []question) (map[string]string, error) {
	if len(questions) == 0 {
		return map[string]string{}, nil
	}
	p := tea.NewProgram(newPromptModel(questions))
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(promptModel)
	if !ok || !final.done {
		return nil, fmt.Errorf("prompt cancelled")
	}
	return final.answers(), nil
}
