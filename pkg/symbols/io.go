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

package symbols

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Format identifies one of the five label file formats the manager reads
// and writes.
type Format int

const (
	FormatMAP Format = iota
	FormatSYM
	FormatVICE
	FormatSJASM
	FormatZ88DK
)

func (f Format) String() string {
	switch f {
	case FormatMAP:
		return "MAP"
	case FormatSYM:
		return "SYM"
	case FormatVICE:
		return "VICE"
	case FormatSJASM:
		return "SJASM"
	case FormatZ88DK:
		return "Z88DK"
	default:
		return "UNKNOWN"
	}
}

// detectFormatByExtension maps a file extension to a format; the second
// return value is false when the extension is not recognised, in which case
// the caller falls back to content sniffing.
func detectFormatByExtension(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".map":
		return FormatMAP, true
	case ".sym":
		return FormatSYM, true
	case ".vice", ".lbl":
		return FormatVICE, true
	case ".sjasm":
		return FormatSJASM, true
	case ".z88dk":
		return FormatZ88DK, true
	default:
		return FormatMAP, false
	}
}

// detectFormatByContent looks at the first non-comment, non-blank line of a
// label file and guesses its format from its grammar.
func detectFormatByContent(firstLine string) Format {
	trimmed := strings.TrimSpace(firstLine)
	switch {
	case strings.HasPrefix(trimmed, "al C:"):
		return FormatVICE
	case strings.HasPrefix(trimmed, "DEFC "):
		return FormatZ88DK
	case strings.Contains(trimmed, "EQU $") || strings.Contains(trimmed, "EQU #") || strings.Contains(trimmed, "EQU 0x"):
		return FormatSJASM
	default:
		return FormatMAP
	}
}

// parseHexAddr accepts 0x, $, # or no prefix, case-insensitively. 0xFFFF and
// 0xFFFFFFFF are reserved parse-error sentinels (HexParseError).
func parseHexAddr(s string) (uint32, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "#")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	if v == 0xFFFF || v == 0xFFFFFFFF {
		return 0, false
	}
	return uint32(v), true
}

// extractKind pulls a trailing "(TYPE)" annotation out of a line, returning
// the annotation-free remainder and the parsed Kind.
func extractKind(s string) (string, Kind) {
	open := strings.LastIndex(s, "(")
	closeIdx := strings.LastIndex(s, ")")
	if open < 0 || closeIdx < open {
		return s, KindUnknown
	}
	kind := parseKind(strings.TrimSpace(s[open+1 : closeIdx]))
	return strings.TrimSpace(s[:open]), kind
}

// stripComment splits a line on ';', returning the code part and the comment
// text (without the semicolon).
func stripComment(line string) (string, string) {
	if i := strings.Index(line, ";"); i >= 0 {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	return line, ""
}

// Load reads a label file into t, detecting its format by extension first
// and then, if the extension is unrecognised, by the shape of its first
// non-comment line. Unknown lines are skipped rather than rejected; an empty
// file loads zero labels successfully.
func (t *Table) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	format, known := detectFormatByExtension(path)
	if !known {
		format = sniffFormat(f)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		l, ok := parseLine(format, line)
		if !ok {
			continue // lenient: malformed lines are skipped, not rejected
		}
		t.Add(l)
	}
	return scanner.Err()
}

func sniffFormat(f *os.File) Format {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		return detectFormatByContent(line)
	}
	return FormatMAP
}

func parseLine(format Format, line string) (Label, bool) {
	switch format {
	case FormatVICE:
		return parseVICELine(line)
	case FormatSJASM:
		return parseSJASMLine(line)
	case FormatZ88DK:
		return parseZ88DKLine(line)
	default: // MAP and SYM share a grammar
		return parseMAPLine(line)
	}
}

// parseMAPLine parses "ADDR NAME [(TYPE)] [; comment]".
func parseMAPLine(line string) (Label, bool) {
	code, comment := stripComment(line)
	fields := strings.Fields(code)
	if len(fields) < 2 {
		return Label{}, false
	}
	addr, ok := parseHexAddr(fields[0])
	if !ok {
		return Label{}, false
	}
	rest, kind := extractKind(strings.Join(fields[1:], " "))
	name := strings.TrimSpace(rest)
	if name == "" {
		return Label{}, false
	}
	return Label{Name: name, Z80Address: uint16(addr), Physical: PhysicalUnresolved, Kind: kind, Comment: comment}, true
}

// parseVICELine parses "al C:ADDR NAME [(TYPE)]".
func parseVICELine(line string) (Label, bool) {
	code, comment := stripComment(line)
	fields := strings.Fields(code)
	if len(fields) < 3 || fields[0] != "al" {
		return Label{}, false
	}
	addrField := fields[1]
	if !strings.HasPrefix(addrField, "C:") {
		return Label{}, false
	}
	addr, ok := parseHexAddr(strings.TrimPrefix(addrField, "C:"))
	if !ok {
		return Label{}, false
	}
	rest, kind := extractKind(strings.Join(fields[2:], " "))
	name := strings.TrimSpace(rest)
	if name == "" {
		return Label{}, false
	}
	return Label{Name: name, Z80Address: uint16(addr), Physical: PhysicalUnresolved, Kind: kind, Comment: comment}, true
}

// parseSJASMLine parses "NAME EQU $ADDR [; (TYPE)]".
func parseSJASMLine(line string) (Label, bool) {
	code, comment := stripComment(line)
	fields := strings.Fields(code)
	if len(fields) < 3 || fields[1] != "EQU" {
		return Label{}, false
	}
	addr, ok := parseHexAddr(fields[2])
	if !ok {
		return Label{}, false
	}
	_, kind := extractKind(comment)
	return Label{Name: fields[0], Z80Address: uint16(addr), Physical: PhysicalUnresolved, Kind: kind, Comment: comment}, true
}

// parseZ88DKLine parses "DEFC NAME = $ADDR [; (TYPE)]".
func parseZ88DKLine(line string) (Label, bool) {
	code, comment := stripComment(line)
	fields := strings.Fields(code)
	if len(fields) < 4 || fields[0] != "DEFC" || fields[2] != "=" {
		return Label{}, false
	}
	addr, ok := parseHexAddr(fields[3])
	if !ok {
		return Label{}, false
	}
	_, kind := extractKind(comment)
	return Label{Name: fields[1], Z80Address: uint16(addr), Physical: PhysicalUnresolved, Kind: kind, Comment: comment}, true
}

// Save writes every label to path in the given format, preceded by a header
// comment naming the format and the time of writing.
func (t *Table) Save(path string, format Format, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "; %s symbols, saved %s\n", format, now.Format(time.RFC3339))

	for _, l := range t.All() {
		line := formatLine(format, l)
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

func formatLine(format Format, l Label) string {
	kindSuffix := ""
	if l.Kind != KindUnknown {
		kindSuffix = fmt.Sprintf(" (%s)", l.Kind)
	}

	switch format {
	case FormatVICE:
		return fmt.Sprintf("al C:%04X %s%s", l.Z80Address, l.Name, kindSuffix)
	case FormatSJASM:
		line := fmt.Sprintf("%s EQU $%04X", l.Name, l.Z80Address)
		if kindSuffix != "" {
			line += " ;" + kindSuffix
		}
		return line
	case FormatZ88DK:
		line := fmt.Sprintf("DEFC %s = $%04X", l.Name, l.Z80Address)
		if kindSuffix != "" {
			line += " ;" + kindSuffix
		}
		return line
	default: // MAP and SYM
		return fmt.Sprintf("%04X %s%s", l.Z80Address, l.Name, kindSuffix)
	}
}
