package profiles

import (
	"fmt"
	"time"

	"github.com/bnema/vault-kv-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	// Selected is marked as the profile set/get would use.
	Selected domain.ProfileID
	// DefaultTimeout is shown for profiles without their own timeout.
	DefaultTimeout time.Duration
}

func renderView(profiles []domain.Profile, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Vault KV profiles"),
		s.header.Render(fmt.Sprintf("profiles: %d", len(profiles))),
	}

	if len(profiles) == 0 {
		lines = append(lines, s.empty.Render("No profiles configured. Add one with: vkv profile add --name default --url <base-url>"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, profile := range profiles {
		lines = append(lines, s.section.Render(renderProfile(profile, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProfile(profile domain.Profile, opts RenderOptions, s styles) string {
	title := s.profile.Render(string(profile.ID))
	if profile.ID == opts.Selected {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", s.active.Render("(selected)"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		field("url", s.detail.Render(profile.BaseURL), s),
		field("timeout", s.detail.Render(timeoutLabel(profile.Timeout, opts.DefaultTimeout)), s),
		field("token", tokenLabel(profile.TokenRef, s), s),
	)
}

func field(name string, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(fmt.Sprintf("  %-9s", name+":")), value)
}

func timeoutLabel(timeout time.Duration, fallback time.Duration) string {
	if timeout > 0 {
		return timeout.String()
	}
	if fallback > 0 {
		return fmt.Sprintf("%s (default)", fallback)
	}
	return "default"
}

func tokenLabel(ref string, s styles) string {
	if ref == "" {
		return s.warning.Render("none")
	}
	return s.detail.Render(ref)
}
