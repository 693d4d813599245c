package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	fcolor "github.com/fatih/color"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// MessageType selects the color and symbol a message is rendered with.
type MessageType int

const (
	// ErrorType renders red with a ✗ symbol.
	ErrorType MessageType = iota
	// WarningType renders yellow with a ⚠ symbol.
	WarningType
	// ActivityType renders in the default color with a ► symbol.
	ActivityType
	// GenerateType renders in the default color with a ✚ symbol.
	GenerateType
	// SuccessType renders green with a ✔ symbol.
	SuccessType
	// InfoType renders blue with an ℹ symbol.
	InfoType
	// TitleType renders bold, prefixed with an emoji instead of a symbol.
	TitleType
)

// Message is a single line (or block) of user-facing CLI output.
type Message struct {
	// Type selects the styling.
	Type MessageType
	// Content is the message text, optionally a format string for Args.
	Content string
	// Args are applied to Content with fmt.Sprintf when non-empty.
	Args []any
	// Emoji replaces the default title emoji for TitleType messages.
	Emoji string
	// Timer, when set on a SuccessType message, appends a timing block.
	Timer timer.Timer
	// Writer is the destination. Defaults to os.Stdout.
	Writer io.Writer
}

type style struct {
	symbol string
	color  *fcolor.Color
}

var styles = map[MessageType]style{
	ErrorType:    {symbol: "✗ ", color: fcolor.New(fcolor.FgRed)},
	WarningType:  {symbol: "⚠ ", color: fcolor.New(fcolor.FgYellow)},
	ActivityType: {symbol: "► ", color: fcolor.New(fcolor.Reset)},
	GenerateType: {symbol: "✚ ", color: fcolor.New(fcolor.Reset)},
	SuccessType:  {symbol: "✔ ", color: fcolor.New(fcolor.FgGreen)},
	InfoType:     {symbol: "ℹ ", color: fcolor.New(fcolor.FgBlue)},
	TitleType:    {symbol: "", color: fcolor.New(fcolor.Reset, fcolor.Bold)},
}

// defaultTitleEmoji is used for TitleType messages without an explicit emoji.
const defaultTitleEmoji = "ℹ️"

// WriteMessage renders a message to its writer. Print failures are reported on
// stderr instead of being returned so output problems never abort a command.
func WriteMessage(msg Message) {
	if msg.Writer == nil {
		msg.Writer = os.Stdout
	}

	content := msg.Content
	if len(msg.Args) > 0 {
		content = fmt.Sprintf(msg.Content, msg.Args...)
	}

	sty, ok := styles[msg.Type]
	if !ok {
		sty = style{color: fcolor.New(fcolor.Reset)}
	}

	content = indentContinuationLines(content, sty.symbol)

	if msg.Type == TitleType {
		emoji := msg.Emoji
		if emoji == "" {
			emoji = defaultTitleEmoji
		}

		_, err := sty.color.Fprintf(msg.Writer, "%s %s\n", emoji, content)
		reportWriteError(err)

		return
	}

	_, err := sty.color.Fprintf(msg.Writer, "%s%s\n", sty.symbol, content)
	reportWriteError(err)

	if msg.Type == SuccessType && msg.Timer != nil {
		total, stage := msg.Timer.GetTiming()

		_, err = sty.color.Fprintf(msg.Writer, "⏲ current: %s\n", stage.String())
		reportWriteError(err)
		_, err = sty.color.Fprintf(msg.Writer, "  total:  %s\n", total.String())
		reportWriteError(err)
	}
}

// Errorf writes an error message.
func Errorf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ErrorType, Content: format, Args: args, Writer: writer})
}

// Warningf writes a warning message.
func Warningf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: WarningType, Content: format, Args: args, Writer: writer})
}

// Activityf writes a progress message.
func Activityf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ActivityType, Content: format, Args: args, Writer: writer})
}

// Generatef writes a file generation message.
func Generatef(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: GenerateType, Content: format, Args: args, Writer: writer})
}

// Successf writes a success message.
func Successf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Writer: writer})
}

// SuccessWithTimerf writes a success message followed by a timing block.
func SuccessWithTimerf(writer io.Writer, tmr timer.Timer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Timer: tmr, Writer: writer})
}

// Infof writes an informational message.
func Infof(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: InfoType, Content: format, Args: args, Writer: writer})
}

// Titlef writes a bold title line prefixed with the given emoji.
func Titlef(writer io.Writer, emoji, format string, args ...any) {
	WriteMessage(Message{
		Type:    TitleType,
		Content: fmt.Sprintf(format, args...),
		Emoji:   emoji,
		Writer:  writer,
	})
}

// indentContinuationLines aligns later lines of multi-line content under the
// first line's text rather than under its symbol.
func indentContinuationLines(content, symbol string) string {
	if symbol == "" || !strings.Contains(content, "\n") {
		return content
	}

	indent := strings.Repeat(" ", len([]rune(symbol)))
	lines := strings.Split(content, "\n")

	for i := 1; i < len(lines); i++ {
		if lines[i] == "" {
			continue
		}

		lines[i] = indent + lines[i]
	}

	return strings.Join(lines, "\n")
}

func reportWriteError(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "notify: failed to print message: %v\n", err)
	}
}
