// Package asciiart renders the kroft logo shown on the bare root command.
package asciiart

import (
	"fmt"
	"io"
)

const kroftLogo = `
 _  __                __  _
| |/ / _ __    ___   / _|| |_
| ' / | '__|  / _ \ | |_ | __|
| . \ | |    | (_) ||  _|| |_
|_|\_\|_|     \___/ |_|   \__|

`

// PrintKroftLogo writes the kroft ASCII logo to the writer. Write errors are
// ignored, the logo is decoration only.
func PrintKroftLogo(writer io.Writer) {
	_, _ = fmt.Fprint(writer, kroftLogo)
}
