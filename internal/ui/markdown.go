package ui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// LoginHelp explains how to capture the browser cookie header.
const LoginHelp = `# Log in to tiffin

tiffin reuses the session of a logged-in browser.

1. Open https://www.swiggy.com and log in.
2. Open developer tools (**F12**) and switch to the **Network** tab.
3. Reload the page and select any request to ` + "`www.swiggy.com`" + `.
4. Copy the value of the ` + "`Cookie`" + ` request header.
5. Paste it below and press **Enter**.

The session is stored locally and renewed automatically while you use tiffin.
Run ` + "`tiffin logout`" + ` to forget it.
`

// RenderMarkdown renders markdown with glamour when stdout is a terminal and
// returns it unchanged otherwise.
func RenderMarkdown(markdown string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return markdown
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
