/*
 * script.go, part of trpprep
 *
 * Copyright 2024 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package vmd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrorMarker starts the line that a failed script prints before quitting VMD.
const ErrorMarker = "TRPPREP-ERROR:"

// Raw is a Tcl word that is written without quoting, for instance a
// command substitution like "[atomselect top all]" or a variable like "$m".
type Raw string

// Script is a Tcl script for VMD. The commands are added with Cmd, which quotes
// each word so file names with spaces or braces are passed verbatim.
type Script struct {
	lines []string
}

// NewScript returns an empty script.
func NewScript() *Script {
	return new(Script)
}

var bareWord = regexp.MustCompile(`^[A-Za-z0-9_./:+=,@%^*-]+$`)

// Quote returns s as a single Tcl word, with the same value as s.
func Quote(s string) string {
	if bareWord.MatchString(s) {
		return s
	}
	if braceSafe(s) {
		return "{" + s + "}"
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '$', '[', ']', '{', '}', '"', ';', ' ', '\t':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "{}"
	}
	return b.String()
}

// braceSafe tells whether s can be enclosed in braces and keep its value: no backslashes,
// balanced braces and no newlines.
func braceSafe(s string) bool {
	if s == "" || strings.ContainsAny(s, "\\\n") {
		return s == ""
	}
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// word turns a Go value into a Tcl word.
func word(v any) string {
	switch w := v.(type) {
	case Raw:
		return string(w)
	case string:
		return Quote(w)
	case int:
		return strconv.Itoa(w)
	case float64:
		return strconv.FormatFloat(w, 'f', -1, 64)
	case [3]float64:
		return List(w[0], w[1], w[2])
	case []string:
		return List(stringsToAny(w)...)
	default:
		return Quote(fmt.Sprint(w))
	}
}

func stringsToAny(s []string) []any {
	ret := make([]any, len(s))
	for i, v := range s {
		ret[i] = v
	}
	return ret
}

// List returns the words as a Tcl list, in braces.
func List(words ...any) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = word(w)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Block returns lines as a braced Tcl script, for commands that take a script as
// argument, such as psfgen's segment.
func Block(lines ...string) Raw {
	return Raw("{\n    " + strings.Join(lines, "\n    ") + "\n}")
}

// Cmd adds a command with the given words. Strings are quoted, Raw words are used as they
// are, ints and float64s are formatted and [3]float64 and []string become lists.
func (S *Script) Cmd(words ...any) *Script {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = word(w)
	}
	S.lines = append(S.lines, strings.Join(parts, " "))
	return S
}

// Raw adds the line as it is.
func (S *Script) Raw(line string) *Script {
	S.lines = append(S.lines, line)
	return S
}

// Puts adds a command to print the given message.
func (S *Script) Puts(msg string) *Script {
	return S.Cmd(Raw("puts"), msg)
}

// Cd adds a command to change VMD's working directory to dir.
func (S *Script) Cd(dir string) *Script {
	return S.Cmd(Raw("cd"), dir)
}

// Require adds a "package require" for each of pkgs.
func (S *Script) Require(pkgs ...string) *Script {
	for _, p := range pkgs {
		S.Cmd(Raw("package"), Raw("require"), p)
	}
	return S
}

// Len returns the number of lines in the script body.
func (S *Script) Len() int {
	return len(S.lines)
}

// Lines returns a copy of the lines in the script body.
func (S *Script) Lines() []string {
	return append([]string(nil), S.lines...)
}

// Body returns the script without the error handling wrapper.
func (S *Script) Body() string {
	return strings.Join(S.lines, "\n") + "\n"
}

// String returns the full script. The body runs inside a catch, so any Tcl error makes VMD
// print ErrorMarker followed by the error message, and quit. VMD quits at the end in any case.
func (S *Script) String() string {
	var b strings.Builder
	b.WriteString("if {[catch {\n")
	for _, l := range S.lines {
		b.WriteString("    ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("} trpprep_err]} {\n")
	fmt.Fprintf(&b, "    puts \"%s $trpprep_err\"\n", ErrorMarker)
	b.WriteString("    quit\n}\nquit\n")
	return b.String()
}
