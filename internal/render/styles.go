// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#2563EB") // Blue
	errorColor   = lipgloss.Color("#DC2626") // Red
	successColor = lipgloss.Color("#15803D") // Green
	warningColor = lipgloss.Color("#A16207") // Amber
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	borderColor  = lipgloss.Color("#D1D5DB")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#374151"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	errorBoxStyle = boxStyle.
			BorderForeground(errorColor).
			Foreground(errorColor)

	warningBoxStyle = boxStyle.
			BorderForeground(warningColor).
			Foreground(warningColor)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 2)

	disabledButtonStyle = buttonStyle.
				Background(mutedColor)
)

// TitleStyle returns the heading style.
func TitleStyle() lipgloss.Style { return titleStyle }

// LabelStyle returns the field label style.
func LabelStyle() lipgloss.Style { return labelStyle }

// MutedStyle returns the style for help and placeholder text.
func MutedStyle() lipgloss.Style { return mutedStyle }

// Button renders the submit control.
func Button(label string, disabled bool) string {
	if disabled {
		return disabledButtonStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

// ErrorPanel renders the error panel for msg.
func ErrorPanel(msg string) string {
	return errorBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("✗ "+LabelError),
		msg,
	))
}

// ResultPanel renders the result panel, including the warning panel when
// the result carried an error.
func ResultPanel(r ResultView) string {
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render(LabelPapers),
			titleStyle.Render(fmt.Sprintf("%d", r.PapersDownloaded)),
		)),
		" ",
		boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render(LabelStatus),
			successStyle.Render(r.Status),
		)),
	)

	parts := []string{
		successStyle.Render("✓ " + LabelComplete),
		"",
		stats,
		"",
		labelStyle.Render(LabelAnswer),
		boxStyle.Render(r.Answer),
	}
	if r.Warning != "" {
		parts = append(parts, "", warningBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("! "+LabelWarning),
			r.Warning,
		)))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Styled renders the full view: a summary of the form followed by the
// error and result panels.
func Styled(v View) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Research Assistant") + "\n")
	sb.WriteString(mutedStyle.Render("AI-powered research using arXiv papers") + "\n\n")
	for _, f := range v.Form.Fields {
		sb.WriteString(labelStyle.Render(f.Label+":") + " " + f.Value + "\n")
	}
	sb.WriteString("\n" + Button(v.Form.SubmitLabel, v.Form.SubmitDisabled) + "\n")
	sb.WriteString(Panels(v))
	return sb.String()
}

// Panels renders only the error and result panels of v.
func Panels(v View) string {
	var sb strings.Builder
	if v.Error != "" {
		sb.WriteString("\n" + ErrorPanel(v.Error) + "\n")
	}
	if v.Result != nil {
		sb.WriteString("\n" + ResultPanel(*v.Result) + "\n")
	}
	return sb.String()
}
