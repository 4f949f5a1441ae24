package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

func usageFunc(h HelpData) func() {
	return func() {
		fmt.Fprintln(os.Stderr, (&UsageError{of: h}).Error())
	}
}

type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of)
	if err != nil {
		log.Printf("error rendering help template: %v", err)
		return "", err
	}
	return buf.String(), nil
}

func (r *root) Template() string {
	return "root.txt"
}

func (a *annotateCmd) Template() string {
	return "annotate.txt"
}

func (m *markCmd) Template() string {
	return "mark.txt"
}

func (c *colorsCmd) Template() string {
	return "colors.txt"
}

func (c *widthsCmd) Template() string {
	return "widths.txt"
}

func (c *configCmd) Template() string {
	return "config.txt"
}

func (v *versionCmd) Template() string {
	return "version.txt"
}
