/*
 * pdb.go, part of trpprep
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

package prep

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/trpprep/v3"
)

// PDBFileRead reads the PDB file pdbname. See PDBRead.
func PDBFileRead(pdbname string) (*Molecule, error) {
	pdbfile, err := os.Open(pdbname)
	if err != nil {
		return nil, newError("", pdbname, "PDBFileRead", err)
	}
	defer pdbfile.Close()
	mol, err := PDBRead(pdbfile)
	if err != nil {
		var e *Error
		if asError(err, &e) && e.filename == "" {
			e.filename = pdbname
		}
		return nil, errDecorate(err, "PDBFileRead")
	}
	return mol, nil
}

// PDBRead reads a PDB from an io.Reader, and returns a Molecule with all the
// MODEL frames in it. The atom information is taken from the first model only.
// The reader follows the columns VMD writes: 4-character residue names,
// segment ID in columns 73-76, and hexadecimal serials and residue numbers
// when they don't fit in decimal. Elements not given in the file are guessed
// from the atom names.
func PDBRead(pdb io.Reader) (*Molecule, error) {
	scanner := bufio.NewScanner(pdb)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	var ats []*Atom
	var coords [][]float64
	var current []float64
	var box []float64
	firstmodel := true
	modelopen := false
	contlines := 0
	for scanner.Scan() {
		contlines++
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			modelopen = true
			if firstmodel {
				at, c, err := readFullPDBLine(line, len(ats))
				if err != nil {
					return nil, newError(fmt.Sprintf("line %d: %s", contlines, err.Error()), "", "PDBRead", err)
				}
				at.Index = len(ats)
				ats = append(ats, at)
				current = append(current, c[:]...)
				continue
			}
			c, err := readPDBCoords(line)
			if err != nil {
				return nil, newError(fmt.Sprintf("line %d: %s", contlines, err.Error()), "", "PDBRead", err)
			}
			current = append(current, c[:]...)
		case strings.HasPrefix(line, "ENDMDL"):
			if modelopen {
				coords = append(coords, current)
				current = nil
				firstmodel = false
				modelopen = false
			}
		case strings.HasPrefix(line, "CRYST1"):
			b, err := readCryst1(line)
			if err != nil {
				return nil, newError(fmt.Sprintf("line %d: %s", contlines, err.Error()), "", "PDBRead", err)
			}
			box = b
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newError("", "", "PDBRead", err)
	}
	if len(current) > 0 {
		coords = append(coords, current)
	}
	if len(ats) == 0 {
		return nil, newError("no atoms in PDB", "", "PDBRead", ErrNoAtoms)
	}
	top := NewTopology(ats)
	frames := make([]*v3.Matrix, 0, len(coords))
	for i, c := range coords {
		if len(c) != 3*len(ats) {
			return nil, newError(fmt.Sprintf("model %d has %d atoms, the first one has %d", i+1, len(c)/3, len(ats)), "", "PDBRead", ErrMismatch)
		}
		m, err := v3.NewMatrix(c)
		if err != nil {
			return nil, newError("", "", "PDBRead", err)
		}
		frames = append(frames, m)
	}
	mol, err := NewMolecule(top, frames...)
	if err != nil {
		return nil, errDecorate(err, "PDBRead")
	}
	mol.Box = box
	return mol, nil
}

// field returns line[from:to], trimmed, for the parts of the range present in the line.
func field(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

// parseHybrid parses decimal numbers, and falls back to hexadecimal, as VMD
// writes numbers that don't fit in the column.
func parseHybrid(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err == nil {
		return n, nil
	}
	n64, err2 := strconv.ParseInt(s, 16, 64)
	if err2 != nil {
		return 0, err
	}
	return int(n64), nil
}

// readFullPDBLine parses a valid ATOM or HETATM line of a PDB file, returns an Atom
// object with the info except for the coordinates, which are returned separately.
// read is the number of atoms read so far, which gives the serial when it can't be parsed.
func readFullPDBLine(line string, read int) (*Atom, [3]float64, error) {
	var c [3]float64
	if len(line) < 54 {
		return nil, c, fmt.Errorf("ATOM record too short (%d characters)", len(line))
	}
	at := new(Atom)
	at.Het = strings.HasPrefix(line, "HETATM")
	var err error
	at.ID, err = parseHybrid(field(line, 6, 11))
	if err != nil {
		at.ID = read + 1
	}
	at.Name = field(line, 12, 16)
	at.MolName = field(line, 17, 21)
	if ch := field(line, 21, 22); ch != "" {
		at.Chain = ch
	}
	at.MolID, err = parseHybrid(field(line, 22, 26))
	if err != nil {
		return nil, c, fmt.Errorf("bad residue number %q", line[22:26])
	}
	if ic := field(line, 26, 27); ic != "" {
		at.ICode = ic[0]
	}
	c, err = readPDBCoords(line)
	if err != nil {
		return nil, c, err
	}
	if s := field(line, 54, 60); s != "" {
		if at.Occupancy, err = strconv.ParseFloat(s, 64); err != nil {
			return nil, c, fmt.Errorf("bad occupancy %q", s)
		}
	}
	if s := field(line, 60, 66); s != "" {
		if at.Bfactor, err = strconv.ParseFloat(s, 64); err != nil {
			return nil, c, fmt.Errorf("bad beta %q", s)
		}
	}
	at.Segid = field(line, 72, 76)
	at.Symbol = normalizeSymbol(field(line, 76, 78))
	guessSymbol(at)
	if at.Symbol != "" {
		at.Mass = symbolMass[at.Symbol]
	}
	return at, c, nil
}

// normalizeSymbol turns "CL" or "cl" into "Cl".
func normalizeSymbol(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

// readPDBCoords reads only the coordinates from an ATOM/HETATM line.
func readPDBCoords(line string) ([3]float64, error) {
	var c [3]float64
	if len(line) < 54 {
		return c, fmt.Errorf("ATOM record too short (%d characters)", len(line))
	}
	for i := 0; i < 3; i++ {
		var err error
		c[i], err = strconv.ParseFloat(strings.TrimSpace(line[30+8*i:38+8*i]), 64)
		if err != nil {
			return c, fmt.Errorf("bad coordinate %q", line[30+8*i:38+8*i])
		}
	}
	return c, nil
}

func readCryst1(line string) ([]float64, error) {
	cols := [][2]int{{6, 15}, {15, 24}, {24, 33}, {33, 40}, {40, 47}, {47, 54}}
	box := make([]float64, 0, 6)
	for _, col := range cols {
		s := field(line, col[0], col[1])
		if s == "" {
			return nil, fmt.Errorf("CRYST1 record too short")
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad CRYST1 field %q", s)
		}
		box = append(box, v)
	}
	return box, nil
}

// PDBFileWrite writes the coordinates coords for the molecule mol to the file pdbname.
func PDBFileWrite(pdbname string, coords *v3.Matrix, mol *Molecule) error {
	out, err := os.Create(pdbname)
	if err != nil {
		return newError("", pdbname, "PDBFileWrite", err)
	}
	defer out.Close()
	if err := PDBWrite(out, coords, mol); err != nil {
		var e *Error
		if asError(err, &e) {
			e.filename = pdbname
		}
		return errDecorate(err, "PDBFileWrite")
	}
	return out.Close()
}

// PDBWrite writes the atoms of mol with the coordinates coords in PDB format, with the
// columns psfgen and VMD write and read, so residue names and segment IDs with up to 4
// characters are kept. Serial numbers and residue numbers too large for their columns are
// written in hexadecimal. The box of mol, if any, is written as a CRYST1 record.
// Only one END record is written, without TER records, as psfgen does.
func PDBWrite(out io.Writer, coords *v3.Matrix, mol *Molecule) error {
	if err := mol.Corrupted(); err != nil {
		return errDecorate(err, "PDBWrite")
	}
	if coords == nil || coords.NVecs() != mol.Len() {
		return newError("coordinates don't match the molecule", "", "PDBWrite", ErrMismatch)
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "REMARK   1 WRITTEN WITH TRPPREP\n")
	if len(mol.Box) == 6 {
		b := mol.Box
		fmt.Fprintf(w, "CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f P 1           1\n", b[0], b[1], b[2], b[3], b[4], b[5])
	}
	for i, at := range mol.Atoms {
		first := "ATOM"
		if at.Het {
			first = "HETATM"
		}
		name := at.Name
		if len(name) > 4 {
			name = name[:4]
		}
		if len(name) < 4 {
			name = " " + name
		}
		icode := byte(' ')
		if at.ICode != 0 {
			icode = at.ICode
		}
		chain := byte(' ')
		if at.Chain != "" {
			chain = at.Chain[0]
		}
		c := coords.Vec(i)
		_, err := fmt.Fprintf(w, "%-6s%5s %-4s%c%-4s%c%4s%c   %8.3f%8.3f%8.3f%6.2f%6.2f      %-4s%2s\n",
			first, serialString(at.ID), name, ' ', at.MolName, chain, residString(at.MolID), icode,
			c[0], c[1], c[2], at.Occupancy, at.Bfactor, at.Segid, strings.ToUpper(at.Symbol))
		if err != nil {
			return newError("", "", "PDBWrite", err)
		}
	}
	fmt.Fprint(w, "END\n")
	if err := w.Flush(); err != nil {
		return newError("", "", "PDBWrite", err)
	}
	return nil
}

func serialString(id int) string {
	switch {
	case id <= 99999:
		return strconv.Itoa(id)
	case id <= 0xfffff:
		return fmt.Sprintf("%05x", id)
	default:
		return "*****"
	}
}

func residString(id int) string {
	switch {
	case id <= 9999:
		return strconv.Itoa(id)
	case id <= 0xffff:
		return fmt.Sprintf("%04x", id)
	default:
		return "****"
	}
}
