package tui

import tea "github.com/charmbracelet/bubbletea"

// maxDriveSteps bounds Drive against models that keep issuing commands.
const maxDriveSteps = 1000

// Drive runs cmd and every command it leads to synchronously, feeding each
// message to m.Update. It is how non-interactive callers use a model without
// a tea.Program. Quit messages end the run.
func Drive(m tea.Model, cmd tea.Cmd) tea.Model {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < maxDriveSteps; steps++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case nil:
		case tea.QuitMsg:
			return m
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			var follow tea.Cmd
			m, follow = m.Update(msg)
			queue = append(queue, follow)
		}
	}
	return m
}
