/*
 * membrane.go, part of trpprep
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
	"context"
	"fmt"
	"sort"

	prep "github.com/rmera/trpprep"
	"github.com/rmera/trpprep/internal/ctxlog"
)

// Clash distances, in Å.
const (
	waterWaterCutoff   = 0.5
	waterLipidCutoff   = 1.0
	heavyAtomCutoff    = 1.0
	allAtomCutoff      = 0.5
	waterProteinCutoff = 1.0
)

type atomSet map[int]bool

func (s atomSet) add(idx ...int) {
	for _, i := range idx {
		s[i] = true
	}
}

func (s atomSet) sorted() []int {
	ret := make([]int, 0, len(s))
	for i := range s {
		ret = append(ret, i)
	}
	sort.Ints(ret)
	return ret
}

func firsts(pairs [][2]int) []int {
	ret := make([]int, len(pairs))
	for i, p := range pairs {
		ret[i] = p[0]
	}
	return ret
}

// CenterMembrane moves the membrane (all frames) so its geometric center is at the center of the
// residues first to last of model.
func CenterMembrane(model, membrane *prep.Molecule, first, last int) error {
	tm := prep.Select(model, 0, prep.ResidRange(first, last))
	target, err := prep.Center(model.Coords[0], tm)
	if err != nil {
		return fmt.Errorf("build: transmembrane residues %d to %d: %w", first, last, err)
	}
	center, err := prep.Center(membrane.Coords[0], nil)
	if err != nil {
		return err
	}
	d := [3]float64{target[0] - center[0], target[1] - center[1], target[2] - center[2]}
	for _, c := range membrane.Coords {
		prep.MoveBy(c, nil, d)
	}
	return nil
}

// Clashes returns the atoms of membrane that clash with each other or with model, sorted. Each
// stage skips the residues already marked as bad by the previous ones:
// water against water, water against lipids, membrane heavy atoms against model heavy atoms,
// any membrane atom against any model atom at a shorter distance, and membrane water against
// any model atom.
func Clashes(ctx context.Context, model, membrane *prep.Molecule) []int {
	log := ctxlog.FromContext(ctx)
	mc := membrane.Coords[0]
	modc := model.Coords[0]
	bad := make(atomSet)
	water := prep.Select(membrane, 0, prep.Water())

	//a clashing pair of water molecules loses only one of them.
	for _, p := range prep.Contacts(mc, water, water, waterWaterCutoff, membrane.Topology) {
		if p[0] < p[1] {
			bad.add(p[0])
		}
	}
	log.Info("Found bad atoms", "stage", "water", "total", len(bad))

	notWater := prep.Select(membrane, 0, prep.Not(prep.Water()))
	bad.add(prep.Within(mc, water, notWater, waterLipidCutoff)...)
	log.Info("Found bad atoms", "stage", "water-lipids", "total", len(bad))

	good := func(sel prep.Selector) []int {
		skip := atomSet{}
		skip.add(prep.SameResidue(membrane.Topology, bad.sorted())...)
		var ret []int
		for _, i := range prep.Select(membrane, 0, sel) {
			if !skip[i] {
				ret = append(ret, i)
			}
		}
		return ret
	}
	modelHeavy := prep.Select(model, 0, prep.NoH())
	modelAll := prep.Select(model, 0, prep.All())

	bad.add(firsts(prep.ContactsBetween(mc, good(prep.NoH()), modc, modelHeavy, heavyAtomCutoff))...)
	log.Info("Found bad atoms", "stage", "protein-lipids", "total", len(bad))

	bad.add(firsts(prep.ContactsBetween(mc, good(prep.All()), modc, modelAll, allAtomCutoff))...)
	log.Info("Found bad atoms", "stage", "protein-lipids-H", "total", len(bad))

	bad.add(firsts(prep.ContactsBetween(mc, good(prep.Water()), modc, modelAll, waterProteinCutoff))...)
	log.Info("Found bad atoms", "stage", "protein-water", "total", len(bad))
	return bad.sorted()
}

// GoodMembrane returns the part of membrane that has no residues with atoms in bad, or
// closer than pore to the z axis.
func GoodMembrane(membrane *prep.Molecule, bad []int, pore float64) (*prep.Molecule, error) {
	remove := append(prep.Select(membrane, 0, prep.Cylinder(pore)), bad...)
	keep := prep.Complement(membrane.Len(), prep.SameResidue(membrane.Topology, remove))
	if len(keep) == 0 {
		return nil, fmt.Errorf("build: no membrane atoms left after removing clashes: %w", prep.ErrNoAtoms)
	}
	return membrane.Subset(keep)
}

// outsidePore selects atoms farther than radius from the z axis.
func outsidePore(radius float64) prep.Selector {
	r2 := radius * radius
	return func(_ *prep.Atom, pos [3]float64) bool {
		return pos[0]*pos[0]+pos[1]*pos[1] > r2
	}
}

// TrimWater removes the water added by solvate inside the membrane: every residue with an
// atom in a segment named WT*, between the lowest and highest lipid phosphorus, and farther
// than pore from the z axis. Water in the pore and the membrane's own water are kept.
func TrimWater(ctx context.Context, mol *prep.Molecule, pore float64) (*prep.Molecule, error) {
	phos := prep.Select(mol, 0, prep.And(prep.Lipid(), prep.Element("P")))
	low, high, err := prep.MinMax(mol.Coords[0], phos)
	if err != nil {
		return nil, fmt.Errorf("build: lipid phosphorus atoms: %w", err)
	}
	inside := prep.Select(mol, 0, prep.And(
		prep.Segid("WT.*"),
		prep.ZSlab(low[2], high[2]),
		outsidePore(pore),
	))
	remove := prep.SameResidue(mol.Topology, inside)
	ctxlog.FromContext(ctx).Info("Removing water from the membrane", "zmin", low[2], "zmax", high[2], "atoms", len(remove))
	return mol.Subset(prep.Complement(mol.Len(), remove))
}

// Box is the size and center of the water in a system.
type Box struct {
	Center [3]float64
	Size   [3]float64 //extent of the water plus 1 Å in each dimension.
}

// MeasureWater returns the box spanned by the water of mol. Lipids sticking out of it
// are left for the minimization to fix.
func MeasureWater(mol *prep.Molecule) (*Box, error) {
	water := prep.Select(mol, 0, prep.Water())
	center, err := prep.Center(mol.Coords[0], water)
	if err != nil {
		return nil, fmt.Errorf("build: measuring water: %w", err)
	}
	min, max, err := prep.MinMax(mol.Coords[0], water)
	if err != nil {
		return nil, err
	}
	b := &Box{Center: center}
	for i := range b.Size {
		b.Size[i] = max[i] - min[i] + 1
	}
	return b, nil
}
