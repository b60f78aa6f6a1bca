/*
 * trp.go, part of trpprep
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

// Package constraints writes the restraint files used in the simulations of the channel:
// PDB files that mark restrained atoms in their occupancy column, and the MDFF
// potential and the restraints that keep MDFF from overfitting.
package constraints

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	prep "github.com/rmera/trpprep"
	"github.com/rmera/trpprep/internal/ctxlog"
)

// Names of the positional restraint files.
const (
	TailsOnlyPDB  = "tails_only.pdb"
	ProteinPDB    = "protein.pdb"
	BackboneCAPDB = "backbone_ca.pdb"
)

// DefaultTailNames match the lipid head group and glycerol atoms, which stay restrained
// when only the tails are released.
var DefaultTailNames = []string{"N", "C1[1-5]", "H[1-5][0-9]", "P1", "O."}

// SetOccupancy sets the occupancy of the atoms of mol selected by sel to value.
func SetOccupancy(mol *prep.Molecule, sel prep.Selector, value float64) int {
	idx := prep.Select(mol, 0, sel)
	for _, i := range idx {
		mol.Atoms[i].Occupancy = value
	}
	return len(idx)
}

// Restraint is a PDB file where the selected atoms have occupancy 1 and the rest 0.
type Restraint struct {
	File string
	Sel  prep.Selector
}

// TRPRestraints returns the restraints for the channel: everything but the lipid tails,
// the protein heavy atoms, and the protein alpha carbons. headNames are the names of the
// lipid atoms that are not part of the tails.
func TRPRestraints(headNames []string) []Restraint {
	return []Restraint{
		{TailsOnlyPDB, prep.Not(prep.And(prep.Lipid(), prep.Not(prep.Name(headNames...))))},
		{ProteinPDB, prep.And(prep.Protein(), prep.NoH())},
		{BackboneCAPDB, prep.And(prep.Protein(), prep.Name("CA"))},
	}
}

// WriteRestraints sets the beta factor of all the atoms of mol to 0 and writes one PDB per
// restraint into outDir, using the first frame of mol. It returns the paths written.
func WriteRestraints(ctx context.Context, mol *prep.Molecule, outDir string, rs []Restraint) ([]string, error) {
	log := ctxlog.FromContext(ctx)
	if err := mol.Corrupted(); err != nil {
		return nil, err
	}
	if len(mol.Coords) == 0 {
		return nil, fmt.Errorf("constraints: the structure has no coordinates")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("constraints: %w", err)
	}
	for _, at := range mol.Atoms {
		at.Bfactor = 0
	}
	var written []string
	for _, r := range rs {
		SetOccupancy(mol, prep.All(), 0)
		n := SetOccupancy(mol, r.Sel, 1)
		name := filepath.Join(outDir, r.File)
		if err := prep.PDBFileWrite(name, mol.Coords[0], mol); err != nil {
			return written, err
		}
		log.Info("Wrote restraints", "file", name, "restrained", n, "atoms", mol.Len())
		written = append(written, name)
	}
	return written, nil
}

// TRP reads the structure from psf and coords (PDB or NAMD binary coordinates) and writes
// the channel restraints into outDir.
func TRP(ctx context.Context, psf, coords, outDir string, headNames []string) ([]string, error) {
	mol, err := prep.LoadStructure(psf, coords)
	if err != nil {
		return nil, err
	}
	if len(headNames) == 0 {
		headNames = DefaultTailNames
	}
	return WriteRestraints(ctx, mol, outDir, TRPRestraints(headNames))
}
