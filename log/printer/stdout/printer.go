// Package stdout prints log lines into the standard output.
// It also colorised outputs with ANSI Escape Codes
package stdout

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
)

const Name = "stdout"

var (
	traceColour   = color.New(color.FgBlue)
	warningColour = color.New(color.FgYellow)
	errorColour   = color.New(color.FgRed)
	unknownColour = color.New(color.FgWhite)
)

func New(c *config.Log) (log.Printer, error) {
	return &Logger{}, nil
}

type Logger struct{}

func (l *Logger) Print(ctx *log.Ctx, s string) error {
	colour := pickColour(ctx.Level)
	_, err := fmt.Println(colour.SprintFunc()(s))
	return err
}

func pickColour(lvl string) *color.Color {
	switch lvl {
	case log.LevelTrace.String():
		return traceColour
	case log.LevelWarning.String():
		return warningColour
	case log.LevelError.String():
		return errorColour
	}

	return unknownColour
}
