package printers

import (
	"fmt"
	"io"

	"rasim/internal/common"
)

// ItemPrinter writes report lines to an io.Writer, optionally copying them
// to a logger.
type ItemPrinter struct {
	writer io.Writer
	msgLog common.Logger
}

// NewItemPrinter constructs an ItemPrinter using the given io.Writer.
func NewItemPrinter(writer io.Writer) *ItemPrinter {
	return &ItemPrinter{
		writer: writer,
	}
}

// SetMessageLogger sets the optional logger that receives a copy of every line.
func (p *ItemPrinter) SetMessageLogger(logger common.Logger) {
	p.msgLog = logger
}

// ItemPrintLine writes msg followed by a newline. A nil writer leaves only
// the logger copy.
func (p *ItemPrinter) ItemPrintLine(msg string) {
	if p.writer != nil {
		fmt.Fprintln(p.writer, msg)
	}
	if p.msgLog != nil {
		p.msgLog.Debug(msg)
	}
}
