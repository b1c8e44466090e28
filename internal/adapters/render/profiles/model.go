package profiles

import (
	"errors"
	"io"

	"github.com/bnema/vault-kv-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	profiles []domain.Profile
	opts     RenderOptions
	styles   styles
	output   string
}

func newModel(profiles []domain.Profile, opts RenderOptions) model {
	return model{
		profiles: profiles,
		opts:     opts,
		styles:   newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.profiles, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render lays out profiles for a terminal. It runs headless: no input is read
// and the program's own output is discarded.
func Render(profiles []domain.Profile, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(profiles, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
