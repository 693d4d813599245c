// Package ui holds small terminal presentation helpers shared by the CLI
// commands.
package ui

import (
	"fmt"
	"io"
	"os"
)

// WriteTerminalTitle writes the ANSI escape sequence that sets the terminal
// window title. The OSC 0 sequence (ESC ] 0 ; title BEL) updates both the
// icon name and the window title on xterm compatible terminals.
func WriteTerminalTitle(out io.Writer, title string) {
	fmt.Fprintf(out, "\033]0;%s\007", title)
}

// SetTerminalTitle sets the title of the terminal kroft runs in. Called
// before handing the screen to a full screen tool such as k9s.
func SetTerminalTitle(title string) {
	WriteTerminalTitle(os.Stdout, title)
}
