/*
 * atom.go, part of trpprep
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
	"fmt"

	v3 "github.com/rmera/trpprep/v3"
)

// Atom contains the information about one atom, except for the coordinates, which
// live in a v3.Matrix in the Molecule.
type Atom struct {
	Name      string
	ID        int //serial number in the file it was read from.
	Index     int //0-based position in the topology.
	MolName   string
	MolID     int
	ICode     byte //insertion code, 0 if none.
	Chain     string
	Segid     string
	Type      string //force field atom type (PSF).
	Charge    float64
	Mass      float64
	Occupancy float64
	Bfactor   float64
	Symbol    string
	Het       bool // is hetatm in the pdb file?
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	n := *A
	return &n
}

// sameResidue returns true if both atoms belong to the same residue, defined
// as the same segment, chain, residue number and insertion code.
func (A *Atom) sameResidue(B *Atom) bool {
	return A.Segid == B.Segid && A.Chain == B.Chain && A.MolID == B.MolID && A.ICode == B.ICode
}

// residueKey identifies the residue the atom belongs to.
type residueKey struct {
	segid string
	chain string
	resid int
	icode byte
}

func (A *Atom) residue() residueKey {
	return residueKey{A.Segid, A.Chain, A.MolID, A.ICode}
}

/*****Topology type***/

// Topology contains the information about a system that doesn't change
// in time: atoms and, if read from a PSF, the connectivity terms. All the
// connectivity terms are given as 0-based atom indexes.
type Topology struct {
	Atoms      []*Atom
	Bonds      [][2]int
	Angles     [][3]int
	Dihedrals  [][4]int
	Impropers  [][4]int
	CrossTerms [][8]int
	Donors     [][2]int //donor, hydrogen. -1 for no hydrogen.
	Acceptors  [][2]int //acceptor, antecedent. -1 for no antecedent.
	Remarks    []string
}

// NewTopology returns a topology with the atoms ats, which are
// re-indexed to match their positions.
func NewTopology(ats []*Atom) *Topology {
	T := &Topology{Atoms: ats}
	T.ResetIndexes()
	return T
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// Atom returns the ith atom.
func (T *Topology) Atom(i int) *Atom {
	return T.Atoms[i]
}

// ResetIndexes sets the Index field of each atom to its position.
func (T *Topology) ResetIndexes() {
	for i, at := range T.Atoms {
		at.Index = i
	}
}

// Subset returns a new topology with copies of the atoms with the given indexes, in the order given.
// The connectivity terms are renumbered, and the terms involving at least one atom that is not
// in the set are dropped. A -1 in donor and acceptor terms (no hydrogen/antecedent) is kept.
// Serial numbers are reset to 1..N.
func (T *Topology) Subset(indexes []int) (*Topology, error) {
	newindex := make(map[int]int, len(indexes))
	ats := make([]*Atom, 0, len(indexes))
	for i, v := range indexes {
		if v < 0 || v >= len(T.Atoms) {
			return nil, newError(fmt.Sprintf("atom index %d out of range [0,%d)", v, len(T.Atoms)), "", "Subset", nil)
		}
		if _, ok := newindex[v]; ok {
			return nil, newError(fmt.Sprintf("atom index %d repeated", v), "", "Subset", nil)
		}
		newindex[v] = i
		at := T.Atoms[v].Copy()
		at.ID = i + 1
		ats = append(ats, at)
	}
	ret := NewTopology(ats)
	ret.Remarks = append(ret.Remarks, T.Remarks...)
	ret.Bonds = renumber2(T.Bonds, newindex, false)
	ret.Donors = renumber2(T.Donors, newindex, true)
	ret.Acceptors = renumber2(T.Acceptors, newindex, true)
	for _, t := range T.Angles {
		if n, ok := renumber(t[:], newindex, false); ok {
			ret.Angles = append(ret.Angles, [3]int{n[0], n[1], n[2]})
		}
	}
	for _, t := range T.Dihedrals {
		if n, ok := renumber(t[:], newindex, false); ok {
			ret.Dihedrals = append(ret.Dihedrals, [4]int(n))
		}
	}
	for _, t := range T.Impropers {
		if n, ok := renumber(t[:], newindex, false); ok {
			ret.Impropers = append(ret.Impropers, [4]int(n))
		}
	}
	for _, t := range T.CrossTerms {
		if n, ok := renumber(t[:], newindex, false); ok {
			ret.CrossTerms = append(ret.CrossTerms, [8]int(n))
		}
	}
	return ret, nil
}

func renumber2(terms [][2]int, newindex map[int]int, optional bool) [][2]int {
	var ret [][2]int
	for _, t := range terms {
		if n, ok := renumber(t[:], newindex, optional); ok {
			ret = append(ret, [2]int{n[0], n[1]})
		}
	}
	return ret
}

// renumber maps each index in term to its new value. It returns false if
// any index is not in newindex. If optional is true, negative indexes are kept as -1.
func renumber(term []int, newindex map[int]int, optional bool) ([]int, bool) {
	ret := make([]int, len(term))
	for i, v := range term {
		if v < 0 && optional {
			ret[i] = -1
			continue
		}
		n, ok := newindex[v]
		if !ok {
			return nil, false
		}
		ret[i] = n
	}
	return ret, true
}

// bondSet returns a set with both orderings of each bond.
func (T *Topology) bondSet() map[[2]int]bool {
	ret := make(map[[2]int]bool, 2*len(T.Bonds))
	for _, b := range T.Bonds {
		ret[b] = true
		ret[[2]int{b[1], b[0]}] = true
	}
	return ret
}

/**Type Molecule**/

// Molecule contains all the info for a system (a Topology) and one or more
// sets of coordinates. Box, if not nil, contains the periodic box lengths
// a, b, c and angles alpha, beta, gamma.
type Molecule struct {
	*Topology
	Coords []*v3.Matrix
	Box    []float64
}

// NewMolecule returns a molecule with the topology top and the coordinates coords. It
// returns an error if any of the coordinate sets doesn't have as many rows as top
// has atoms.
func NewMolecule(top *Topology, coords ...*v3.Matrix) (*Molecule, error) {
	if top == nil {
		return nil, newError("supplied a nil Topology", "", "NewMolecule", nil)
	}
	for i, c := range coords {
		if c == nil || c.NVecs() != top.Len() {
			return nil, newError(fmt.Sprintf("frame %d doesn't match the topology (%d atoms)", i, top.Len()), "", "NewMolecule", ErrMismatch)
		}
	}
	return &Molecule{Topology: top, Coords: coords}, nil
}

// Subset returns a new molecule with the atoms with the given indexes and the corresponding coordinates,
// for all frames.
func (M *Molecule) Subset(indexes []int) (*Molecule, error) {
	top, err := M.Topology.Subset(indexes)
	if err != nil {
		return nil, errDecorate(err, "Molecule.Subset")
	}
	ret := &Molecule{Topology: top}
	if M.Box != nil {
		ret.Box = append([]float64{}, M.Box...)
	}
	for _, c := range M.Coords {
		nc := v3.Zeros(len(indexes))
		nc.SomeVecs(c, indexes)
		ret.Coords = append(ret.Coords, nc)
	}
	return ret, nil
}

// Corrupted checks whether the molecule is valid, i.e., has a topology
// with at least one atom and that all coordinate sets match it.
func (M *Molecule) Corrupted() error {
	if M == nil || M.Topology == nil || M.Len() == 0 {
		return newError("empty molecule", "", "Corrupted", ErrNoAtoms)
	}
	for i, c := range M.Coords {
		if c.NVecs() != M.Len() {
			return newError(fmt.Sprintf("frame %d has %d atoms, topology has %d", i, c.NVecs(), M.Len()), "", "Corrupted", ErrMismatch)
		}
	}
	return nil
}
