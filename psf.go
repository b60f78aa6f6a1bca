/*
 * psf.go, part of trpprep
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
)

// psfSection describes one of the connectivity sections of a PSF file.
type psfSection struct {
	tag     string
	arity   int
	perline int //terms per line when writing.
}

var psfSections = []psfSection{
	{"NBOND", 2, 4},
	{"NTHETA", 3, 3},
	{"NPHI", 4, 2},
	{"NIMPHI", 4, 2},
	{"NDON", 2, 4},
	{"NACC", 2, 4},
	{"NCRTERM", 8, 1},
}

// PSFFileRead reads a PSF topology from the file psfname.
func PSFFileRead(psfname string) (*Topology, error) {
	f, err := os.Open(psfname)
	if err != nil {
		return nil, newError("", psfname, "PSFFileRead", err)
	}
	defer f.Close()
	top, err := PSFRead(f)
	if err != nil {
		var e *Error
		if asError(err, &e) && e.filename == "" {
			e.filename = psfname
		}
		return nil, errDecorate(err, "PSFFileRead")
	}
	return top, nil
}

// PSFRead reads a CHARMM/X-PLOR PSF (standard or EXT format) from r.
// It reads the title, the atoms and the bonds, angles, dihedrals, impropers, donors,
// acceptors and cross-terms. Other sections are ignored.
func PSFRead(r io.Reader) (*Topology, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	if !scanner.Scan() {
		return nil, newError("empty PSF", "", "PSFRead", scanner.Err())
	}
	header := strings.Fields(scanner.Text())
	if len(header) == 0 || header[0] != "PSF" {
		return nil, newError("missing PSF header", "", "PSFRead", nil)
	}
	top := new(Topology)
	var section string
	var count int
	var ints []int
	flush := func() error {
		if section == "" {
			return nil
		}
		defer func() { section = ""; ints = nil }()
		for _, s := range psfSections {
			if s.tag != section {
				continue
			}
			if len(ints) != s.arity*count {
				return fmt.Errorf("section !%s declares %d terms but has %d indexes", section, count, len(ints))
			}
			return top.setTerms(s, ints)
		}
		return nil
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if i := strings.Index(line, "!"); i >= 0 {
			if err := flush(); err != nil {
				return nil, newError(err.Error(), "", "PSFRead", nil)
			}
			fields := strings.Fields(line[:i])
			if len(fields) == 0 {
				return nil, newError(fmt.Sprintf("bad section header %q", line), "", "PSFRead", nil)
			}
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, newError(fmt.Sprintf("bad section header %q", line), "", "PSFRead", err)
			}
			tag := strings.TrimSpace(line[i+1:])
			if j := strings.IndexAny(tag, ": "); j >= 0 {
				tag = tag[:j]
			}
			switch tag {
			case "NTITLE":
				for k := 0; k < n && scanner.Scan(); k++ {
					top.Remarks = append(top.Remarks, strings.TrimSpace(scanner.Text()))
				}
			case "NATOM":
				if err := top.readPSFAtoms(scanner, n); err != nil {
					return nil, newError(err.Error(), "", "PSFRead", err)
				}
			default:
				section = tag
				count = n
			}
			continue
		}
		if section == "" {
			continue
		}
		for _, f := range strings.Fields(line) {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, newError(fmt.Sprintf("bad index %q in section !%s", f, section), "", "PSFRead", err)
			}
			ints = append(ints, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newError("", "", "PSFRead", err)
	}
	if err := flush(); err != nil {
		return nil, newError(err.Error(), "", "PSFRead", nil)
	}
	if len(top.Atoms) == 0 {
		return nil, newError("no atoms in PSF", "", "PSFRead", ErrNoAtoms)
	}
	return top, nil
}

func (T *Topology) readPSFAtoms(scanner *bufio.Scanner, n int) error {
	T.Atoms = make([]*Atom, 0, n)
	for len(T.Atoms) < n {
		if !scanner.Scan() {
			return fmt.Errorf("PSF ended after %d of %d atoms", len(T.Atoms), n)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 8 {
			return fmt.Errorf("bad atom line %q", scanner.Text())
		}
		at := new(Atom)
		var err error
		if at.ID, err = strconv.Atoi(fields[0]); err != nil {
			return fmt.Errorf("bad atom serial %q", fields[0])
		}
		at.Segid = fields[1]
		resid := fields[2]
		if last := resid[len(resid)-1]; last < '0' || last > '9' {
			at.ICode = last
			resid = resid[:len(resid)-1]
		}
		if at.MolID, err = strconv.Atoi(resid); err != nil {
			return fmt.Errorf("bad residue number %q", fields[2])
		}
		at.MolName = fields[3]
		at.Name = fields[4]
		at.Type = fields[5]
		if at.Charge, err = strconv.ParseFloat(fields[6], 64); err != nil {
			return fmt.Errorf("bad charge %q", fields[6])
		}
		if at.Mass, err = strconv.ParseFloat(fields[7], 64); err != nil {
			return fmt.Errorf("bad mass %q", fields[7])
		}
		at.Occupancy = 1
		at.Index = len(T.Atoms)
		guessSymbol(at)
		T.Atoms = append(T.Atoms, at)
	}
	return nil
}

// setTerms fills the connectivity term given by s with ints, which are 1-based.
func (T *Topology) setTerms(s psfSection, ints []int) error {
	n := len(T.Atoms)
	for i := range ints {
		ints[i]--
		if ints[i] >= n || (ints[i] < 0 && !(s.tag == "NDON" || s.tag == "NACC")) {
			return fmt.Errorf("atom index %d out of range in section !%s", ints[i]+1, s.tag)
		}
		if ints[i] < 0 {
			ints[i] = -1
		}
	}
	for i := 0; i+s.arity <= len(ints); i += s.arity {
		t := ints[i : i+s.arity]
		switch s.tag {
		case "NBOND":
			T.Bonds = append(T.Bonds, [2]int(t))
		case "NTHETA":
			T.Angles = append(T.Angles, [3]int(t))
		case "NPHI":
			T.Dihedrals = append(T.Dihedrals, [4]int(t))
		case "NIMPHI":
			T.Impropers = append(T.Impropers, [4]int(t))
		case "NDON":
			T.Donors = append(T.Donors, [2]int(t))
		case "NACC":
			T.Acceptors = append(T.Acceptors, [2]int(t))
		case "NCRTERM":
			T.CrossTerms = append(T.CrossTerms, [8]int(t))
		}
	}
	return nil
}

// PSFFileWrite writes top to the file psfname. See PSFWrite.
func PSFFileWrite(psfname string, top *Topology) error {
	out, err := os.Create(psfname)
	if err != nil {
		return newError("", psfname, "PSFFileWrite", err)
	}
	defer out.Close()
	if err := PSFWrite(out, top); err != nil {
		return errDecorate(err, "PSFFileWrite")
	}
	return out.Close()
}

// PSFWrite writes top in the PSF layout psfgen uses. The EXT format is used when
// some field doesn't fit in the standard columns, and the CMAP flag is set if
// there are cross-terms.
func PSFWrite(out io.Writer, top *Topology) error {
	if top == nil || top.Len() == 0 {
		return newError("empty topology", "", "PSFWrite", ErrNoAtoms)
	}
	ext := top.needsExt()
	w := bufio.NewWriter(out)
	flags := "PSF"
	if ext {
		flags += " EXT"
	}
	if len(top.CrossTerms) > 0 {
		flags += " CMAP"
	}
	fmt.Fprintf(w, "%s\n\n", flags)
	remarks := top.Remarks
	if len(remarks) == 0 {
		remarks = []string{"REMARKS original generated structure x-plor psf file"}
	}
	wide := "%8d"
	if ext {
		wide = "%10d"
	}
	fmt.Fprintf(w, wide+" !NTITLE\n", len(remarks))
	for _, r := range remarks {
		if !strings.HasPrefix(r, "REMARK") {
			r = "REMARKS " + r
		}
		fmt.Fprintf(w, " %s\n", r)
	}
	fmt.Fprintf(w, "\n"+wide+" !NATOM\n", top.Len())
	atfmt := "%8d %-4s %-4s %-4s %-4s %-4s %10.6f %13.4f %11d\n"
	if ext {
		atfmt = "%10d %-8s %-8s %-8s %-8s %-6s %10.6f %13.4f %11d\n"
	}
	for i, at := range top.Atoms {
		resid := strconv.Itoa(at.MolID)
		if at.ICode != 0 && at.ICode != ' ' {
			resid += string(at.ICode)
		}
		fmt.Fprintf(w, atfmt, i+1, nonEmpty(at.Segid), resid, at.MolName, at.Name, nonEmpty(at.Type), at.Charge, at.Mass, 0)
	}
	for _, s := range psfSections {
		terms := top.terms(s.tag)
		if s.tag == "NCRTERM" && len(terms) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n"+wide+" !%s%s\n", len(terms), s.tag, psfSectionSuffix[s.tag])
		for i, t := range terms {
			for _, v := range t {
				fmt.Fprintf(w, wide, v+1)
			}
			if (i+1)%s.perline == 0 || i == len(terms)-1 {
				fmt.Fprint(w, "\n")
			}
		}
	}
	fmt.Fprintf(w, "\n"+wide+" !NNB\n\n", 0)
	for i := 0; i < top.Len(); i++ {
		fmt.Fprintf(w, wide, 0)
		if (i+1)%8 == 0 || i == top.Len()-1 {
			fmt.Fprint(w, "\n")
		}
	}
	fmt.Fprintf(w, "\n"+wide+wide+" !NGRP\n", 1, 0)
	fmt.Fprintf(w, wide+wide+wide+"\n\n", 0, 0, 0)
	if err := w.Flush(); err != nil {
		return newError("", "", "PSFWrite", err)
	}
	return nil
}

var psfSectionSuffix = map[string]string{
	"NBOND":   ": bonds",
	"NTHETA":  ": angles",
	"NPHI":    ": dihedrals",
	"NIMPHI":  ": impropers",
	"NDON":    ": donors",
	"NACC":    ": acceptors",
	"NCRTERM": ": cross-terms",
}

func nonEmpty(s string) string {
	if s == "" {
		return "X"
	}
	return s
}

func (T *Topology) needsExt() bool {
	if T.Len() > 99999999 {
		return true
	}
	for _, at := range T.Atoms {
		if len(at.Segid) > 4 || len(at.MolName) > 4 || len(at.Name) > 4 || len(at.Type) > 4 || at.MolID > 9999 {
			return true
		}
	}
	return false
}

// terms returns the connectivity terms for the PSF section tag as slices.
func (T *Topology) terms(tag string) [][]int {
	var ret [][]int
	switch tag {
	case "NBOND":
		for _, t := range T.Bonds {
			ret = append(ret, []int{t[0], t[1]})
		}
	case "NTHETA":
		for _, t := range T.Angles {
			ret = append(ret, []int{t[0], t[1], t[2]})
		}
	case "NPHI":
		for _, t := range T.Dihedrals {
			ret = append(ret, t[:])
		}
	case "NIMPHI":
		for _, t := range T.Impropers {
			ret = append(ret, t[:])
		}
	case "NDON":
		for _, t := range T.Donors {
			ret = append(ret, []int{t[0], t[1]})
		}
	case "NACC":
		for _, t := range T.Acceptors {
			ret = append(ret, []int{t[0], t[1]})
		}
	case "NCRTERM":
		for _, t := range T.CrossTerms {
			ret = append(ret, t[:])
		}
	}
	return ret
}
