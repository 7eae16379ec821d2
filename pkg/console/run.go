// This file is part of unreal-ng.
//
// unreal-ng is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// unreal-ng is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with unreal-ng.  If not, see <https://www.gnu.org/licenses/>.

package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const prompt = "unreal> "

// termReadWriter joins separate input/output streams into the single
// io.ReadWriter golang.org/x/term.NewTerminal requires, since stdin and
// stdout are two different *os.File values.
type termReadWriter struct {
	io.Reader
	io.Writer
}

// Run drives a synchronous read-eval-print loop, reading commands from in
// and writing the prompt and command output to c.Out. When in is a real
// terminal, raw mode is entered so golang.org/x/term's line editor can offer
// history and cursor movement; when it isn't (input piped from a script
// file), Run falls back to plain line buffering, the same degradation the
// teacher's plainterm.PlainTerminal offers when no richer terminal is
// available.
func (c *Console) Run(in *os.File) error {
	if !term.IsTerminal(int(in.Fd())) {
		return c.runPlain(in)
	}

	oldState, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return c.runPlain(in)
	}
	defer term.Restore(int(in.Fd()), oldState)

	t := term.NewTerminal(termReadWriter{Reader: in, Writer: c.Out}, prompt)
	for {
		line, err := t.ReadLine()
		if err != nil {
			return normalizeEOF(err)
		}
		if err := c.Dispatch(line); err != nil {
			if err == ErrQuit {
				return nil
			}
			fmt.Fprintf(t, "* %v\n", err)
		}
	}
}

func (c *Console) runPlain(in *os.File) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.Out, prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := c.Dispatch(scanner.Text()); err != nil {
			if err == ErrQuit {
				return nil
			}
			fmt.Fprintf(c.Out, "* %v\n", err)
		}
	}
}

func normalizeEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}
