/*
 * namdbin.go, part of trpprep
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
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	v3 "github.com/rmera/trpprep/v3"
)

// NAMDBinRead reads NAMD binary coordinates (an int32 with the number of atoms, followed
// by x, y and z for each atom as float64) from r. The byte order is detected from
// the size of the data, as VMD does.
func NAMDBinRead(r io.Reader) (*v3.Matrix, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, newError("", "", "NAMDBinRead", err)
	}
	if len(raw) < 4 {
		return nil, newError("can't read the number of atoms", "", "NAMDBinRead", io.ErrUnexpectedEOF)
	}
	var order binary.ByteOrder = binary.LittleEndian
	n := int64(int32(order.Uint32(raw)))
	if n <= 0 || int64(len(raw)) != 4+24*n {
		order = binary.BigEndian
		n = int64(int32(order.Uint32(raw)))
		if n <= 0 || int64(len(raw)) != 4+24*n {
			return nil, newError(fmt.Sprintf("%d bytes is not a valid size for NAMD binary coordinates", len(raw)), "", "NAMDBinRead", nil)
		}
	}
	data := make([]float64, 3*n)
	for i := range data {
		data[i] = math.Float64frombits(order.Uint64(raw[4+8*i:]))
	}
	m, err := v3.NewMatrix(data)
	if err != nil {
		return nil, newError("", "", "NAMDBinRead", err)
	}
	return m, nil
}

// NAMDBinFileRead reads NAMD binary coordinates from the file name.
func NAMDBinFileRead(name string) (*v3.Matrix, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError("", name, "NAMDBinFileRead", err)
	}
	defer f.Close()
	m, err := NAMDBinRead(f)
	if err != nil {
		var e *Error
		if asError(err, &e) {
			e.filename = name
		}
		return nil, errDecorate(err, "NAMDBinFileRead")
	}
	return m, nil
}

// NAMDBinWrite writes coords to w as little-endian NAMD binary coordinates.
func NAMDBinWrite(w io.Writer, coords *v3.Matrix) error {
	n := coords.NVecs()
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(n)); err != nil {
		return newError("", "", "NAMDBinWrite", err)
	}
	for i := 0; i < n; i++ {
		v := coords.Vec(i)
		if err := binary.Write(bw, binary.LittleEndian, v[:]); err != nil {
			return newError("", "", "NAMDBinWrite", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return newError("", "", "NAMDBinWrite", err)
	}
	return nil
}

// NAMDBinFileWrite writes coords to the file name as NAMD binary coordinates.
func NAMDBinFileWrite(name string, coords *v3.Matrix) error {
	f, err := os.Create(name)
	if err != nil {
		return newError("", name, "NAMDBinFileWrite", err)
	}
	defer f.Close()
	if err := NAMDBinWrite(f, coords); err != nil {
		return errDecorate(err, "NAMDBinFileWrite")
	}
	return f.Close()
}

// isNAMDBin tells whether the file name holds NAMD binary coordinates, either because its
// size matches the atom count in its first four bytes or because of its extension.
func isNAMDBin(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return false, err
	}
	var n int32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return false, nil
	}
	if n > 0 && st.Size() == 4+24*int64(n) {
		return true, nil
	}
	ext := strings.ToLower(name)
	return strings.HasSuffix(ext, ".coor") || strings.HasSuffix(ext, ".vel"), nil
}

// LoadStructure reads the topology in the PSF psfname and the coordinates in coordname, which can be
// a PDB (all models are read) or NAMD binary coordinates, and returns the resulting molecule.
// Occupancy, beta, element and box are taken from the PDB, when the coordinates come from one.
// The number of atoms in both files must match.
func LoadStructure(psfname, coordname string) (*Molecule, error) {
	top, err := PSFFileRead(psfname)
	if err != nil {
		return nil, errDecorate(err, "LoadStructure")
	}
	bin, err := isNAMDBin(coordname)
	if err != nil {
		return nil, newError("", coordname, "LoadStructure", err)
	}
	if bin {
		c, err := NAMDBinFileRead(coordname)
		if err != nil {
			return nil, errDecorate(err, "LoadStructure")
		}
		mol, err := NewMolecule(top, c)
		if err != nil {
			e := newError(fmt.Sprintf("%s has %d atoms, %s has %d", psfname, top.Len(), coordname, c.NVecs()), coordname, "LoadStructure", ErrMismatch)
			return nil, e
		}
		return mol, nil
	}
	pdb, err := PDBFileRead(coordname)
	if err != nil {
		return nil, errDecorate(err, "LoadStructure")
	}
	if pdb.Len() != top.Len() {
		return nil, newError(fmt.Sprintf("%s has %d atoms, %s has %d", psfname, top.Len(), coordname, pdb.Len()), coordname, "LoadStructure", ErrMismatch)
	}
	for i, at := range top.Atoms {
		p := pdb.Atoms[i]
		at.Occupancy = p.Occupancy
		at.Bfactor = p.Bfactor
		at.Het = p.Het
		if at.Chain == "" {
			at.Chain = p.Chain
		}
		if p.Symbol != "" && at.Symbol == "" {
			at.Symbol = p.Symbol
		}
	}
	mol, err := NewMolecule(top, pdb.Coords...)
	if err != nil {
		return nil, errDecorate(err, "LoadStructure")
	}
	mol.Box = pdb.Box
	return mol, nil
}
