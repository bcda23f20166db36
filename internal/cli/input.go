// Package cli handles cmd line input for parsing addresses interactively,
// for debugging and testing the parser.
package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/addrserve/internal/utils"
	"github.com/bastiangx/addrserve/pkg/address"
	"github.com/charmbracelet/log"
)

// InputHandler reads one address per line and prints the parsed record.
type InputHandler struct {
	parser       *address.Parser
	in           io.Reader
	out          io.Writer
	noFilter     bool
	requestCount int
	interpreted  int
}

// NewInputHandler handles initialization of the InputHandler. With noFilter
// set, lines without any Chinese character are parsed too.
func NewInputHandler(parser *address.Parser, noFilter bool) *InputHandler {
	return &InputHandler{
		parser:   parser,
		in:       os.Stdin,
		out:      os.Stdout,
		noFilter: noFilter,
	}
}

// SetIO replaces stdin and stdout.
func (h *InputHandler) SetIO(in io.Reader, out io.Writer) {
	h.in, h.out = in, out
}

// Start runs the input loop until EOF.
func (h *InputHandler) Start() error {
	log.Print("addrserve CLI")
	log.Print("type an address and press Enter (Ctrl+D to exit):")
	reader := bufio.NewReader(h.in)

	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debugf("Parsed %d addresses, %d interpreted", h.requestCount, h.interpreted)
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(text string) {
	if !h.noFilter && !utils.IsValidInput(text) {
		log.Warnf("Skipping input without an address: '%s'", text)
		return
	}
	h.requestCount++

	start := time.Now()
	rec := h.parser.Parse(text)
	log.Debugf("Took [ %v ] for '%s'", time.Since(start), text)

	if rec.Interpreted() {
		h.interpreted++
	}
	renderRecord(h.out, rec)
}
