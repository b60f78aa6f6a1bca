/*
 * template.go, part of trpprep
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

package build

import (
	"fmt"
	"path/filepath"

	prep "github.com/rmera/trpprep"
	"github.com/rmera/trpprep/internal/config"
)

// PrepareTemplate puts the geometric center of the first frame of mol at the origin and then
// rotates it by deg degrees around z, so the model needs a smaller box.
func PrepareTemplate(mol *prep.Molecule, deg float64) error {
	if err := mol.Corrupted(); err != nil {
		return err
	}
	c := mol.Coords[0]
	center, err := prep.Center(c, nil)
	if err != nil {
		return err
	}
	prep.MoveBy(c, nil, [3]float64{-center[0], -center[1], -center[2]})
	prep.RotateZ(c, deg)
	return nil
}

// ChainSegment is a piece of one chain of the template, written to its own PDB file.
type ChainSegment struct {
	Name string //segment ID, the chain plus the suffix of the range.
	PDB  string
}

// WriteSegments writes, for each chain, one PDB file per residue range into dir, named after the
// segment. It fails if any of the ranges has no atoms.
func WriteSegments(mol *prep.Molecule, chains []string, ranges []config.SegmentRange, dir string) ([]ChainSegment, error) {
	var ret []ChainSegment
	for _, chain := range chains {
		for _, r := range ranges {
			name := chain + r.Suffix
			idx := prep.Select(mol, 0, prep.And(prep.Chain(chain), prep.ResidRange(r.First, r.Last)))
			if len(idx) == 0 {
				return nil, fmt.Errorf("build: no atoms in chain %s residues %d to %d of the template", chain, r.First, r.Last)
			}
			seg, err := mol.Subset(idx)
			if err != nil {
				return nil, err
			}
			pdb := filepath.Join(dir, name+".pdb")
			if err := prep.PDBFileWrite(pdb, seg.Coords[0], seg); err != nil {
				return nil, err
			}
			ret = append(ret, ChainSegment{Name: name, PDB: pdb})
		}
	}
	return ret, nil
}
