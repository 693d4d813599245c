// Copyright (c) Kroft contributors. All rights reserved.
// Licensed under the MIT License.

//go:build ignore

// gen_docs.go generates reference documentation from the kroft source:
//
//   - reference/cli.md: command and flag reference walked from the cobra tree
//   - reference/configuration.md: kroft.yaml reference built from the prose
//     constants in gen_docs_prose.go
//
// Usage:
//
//	go run gen_docs.go gen_docs_prose.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/cmd"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o600

	cliDocPath    = "reference/cli.md"
	configDocPath = "reference/configuration.md"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := writeDoc(cliDocPath, renderCLIDoc()); err != nil {
		return err
	}

	return writeDoc(configDocPath, renderConfigDoc())
}

func writeDoc(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), filePermissions); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("gen_docs: wrote %s (%d bytes)\n", path, len(content))

	return nil
}

// renderCLIDoc walks the command tree and renders one section per command.
func renderCLIDoc() string {
	root := cmd.NewRootCmd("dev", "none", "unknown")
	root.InitDefaultHelpFlag()
	root.InitDefaultCompletionCmd()

	var b strings.Builder

	b.WriteString(cliFrontmatter)
	b.WriteString("\n\n")
	b.WriteString(cliIntroProse)
	b.WriteString("\n")

	writeCommandSection(&b, root)

	return b.String()
}

// writeCommandSection renders a single command and recurses into its visible
// subcommands in definition order.
func writeCommandSection(b *strings.Builder, c *cobra.Command) {
	if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
		return
	}

	fmt.Fprintf(b, "\n## `%s`\n\n", c.CommandPath())

	if c.Long != "" {
		b.WriteString(c.Long)
		b.WriteString("\n")
	} else if c.Short != "" {
		b.WriteString(c.Short)
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "\n%s\n%s\n%s\n", cbt, c.UseLine(), cbt)

	if flagUsages := c.NonInheritedFlags().FlagUsages(); flagUsages != "" {
		fmt.Fprintf(b, "\n**Flags:**\n\n%s\n%s%s\n", cbt, flagUsages, cbt)
	}

	for _, sub := range c.Commands() {
		writeCommandSection(b, sub)
	}
}

// renderConfigDoc assembles the configuration reference from prose constants.
func renderConfigDoc() string {
	sections := []string{
		configFrontmatter,
		configIntroProse,
		configSpecProse,
		configNodesProse,
		configK3sProse,
		configPlatformProse,
		configDevProse,
		configSecretsProse,
	}

	return strings.Join(sections, "\n\n") + "\n"
}
