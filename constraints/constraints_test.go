/*
 * constraints_test.go, part of trpprep
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

package constraints

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prep "github.com/rmera/trpprep"
	"github.com/rmera/trpprep/internal/config"
	v3 "github.com/rmera/trpprep/v3"
	"github.com/rmera/trpprep/vmd"
)

// A two-residue peptide, a lipid with head and tail atoms, and a water.
func system(t *testing.T) *prep.Molecule {
	t.Helper()
	type a struct {
		name, res, seg, sym string
		resid           int
	}
	ats := []a{
		{"N", "ALA", "P1", "N", 1},    //0
		{"HN", "ALA", "P1", "H", 1},   //1
		{"CA", "ALA", "P1", "C", 1},   //2
		{"CA", "GLY", "P1", "C", 2},   //3
		{"N", "POPC", "MEMB", "N", 3}, //4 head
		{"C12", "POPC", "MEMB", "C", 3},
		{"H11", "POPC", "MEMB", "H", 3},
		{"P1", "POPC", "MEMB", "P", 3},
		{"O2", "POPC", "MEMB", "O", 3},
		{"O11", "POPC", "MEMB", "O", 3},  //9 tail: O. matches two characters only
		{"C21", "POPC", "MEMB", "C", 3},  //10 tail
		{"H91X", "POPC", "MEMB", "H", 3}, //11 tail
		{"OH2", "TIP3", "WT1", "O", 4},
	}
	atoms := make([]*prep.Atom, len(ats))
	coords := v3.Zeros(len(ats))
	for i, x := range ats {
		atoms[i] = &prep.Atom{Name: x.name, MolName: x.res, Segid: x.seg, Symbol: x.sym, MolID: x.resid, ID: i + 1, Bfactor: 7, Occupancy: 0.5}
		coords.Set(i, 0, float64(i))
	}
	mol, err := prep.NewMolecule(prep.NewTopology(atoms), coords)
	require.NoError(t, err)
	return mol
}

func occupancies(t *testing.T, name string) ([]float64, []float64) {
	t.Helper()
	mol, err := prep.PDBFileRead(name)
	require.NoError(t, err)
	var occ, beta []float64
	for _, at := range mol.Atoms {
		occ = append(occ, at.Occupancy)
		beta = append(beta, at.Bfactor)
	}
	return occ, beta
}

func TestWriteRestraints(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	written, err := WriteRestraints(context.Background(), system(t), dir, TRPRestraints(DefaultTailNames))
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, TailsOnlyPDB),
		filepath.Join(dir, ProteinPDB),
		filepath.Join(dir, BackboneCAPDB),
	}, written)

	occ, beta := occupancies(t, written[0])
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 1}, occ)
	assert.Equal(t, make([]float64, 13), beta)
	occ, _ = occupancies(t, written[1])
	assert.Equal(t, []float64{1, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}, occ)
	occ, _ = occupancies(t, written[2])
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}, occ)
}

func TestTRP(t *testing.T) {
	dir := t.TempDir()
	mol := system(t)
	psf := filepath.Join(dir, "initial.psf")
	coor := filepath.Join(dir, "min.coor")
	require.NoError(t, prep.PSFFileWrite(psf, mol.Topology))
	require.NoError(t, prep.NAMDBinFileWrite(coor, mol.Coords[0]))
	written, err := TRP(context.Background(), psf, coor, dir, nil)
	require.NoError(t, err)
	require.Len(t, written, 3)
	back, err := prep.PDBFileRead(written[2])
	require.NoError(t, err)
	require.Equal(t, 13, back.Len())
	v := back.Coords[0].Vec(5)
	assert.InDelta(t, 5.0, v[0], 1e-3)

	_, err = TRP(context.Background(), psf, filepath.Join(dir, "missing.coor"), dir, nil)
	assert.Error(t, err)
}

func TestMDFF(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default().MDFF
	cfg.TemplatePSF = "template.psf"
	cfg.TemplatePDB = "template.pdb"
	rec := &vmd.Recorder{}
	_, err := MDFF(context.Background(), rec, cfg, dir)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, rec.Names())

	for _, f := range []string{"initial.psf", "initial.pdb", "template.psf", "template.pdb"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
	}
	out, err := MDFF(context.Background(), rec, cfg, dir)
	require.NoError(t, err)
	assert.Equal(t, "mdff-potential.dx", out.Potential)
	require.Equal(t, []string{"mdff"}, rec.Names())
	want := []string{
		"cd " + dir,
		"set m [mol new initial.psf waitfor all]",
		"mol addfile initial.pdb waitfor all molid $m",
		"set t [mol new template.psf waitfor all]",
		"mol addfile template.pdb waitfor all molid $t",
		"package require mdff",
		"mdff sim [atomselect $t protein] -res 5 -o mdff-map.situs",
		"mdff griddx -i mdff-map.situs -o mdff-potential.dx",
		"mdff gridpdb -psf initial.psf -pdb initial.pdb -o mdff-weights.pdb",
		"package require ssrestraints",
		"ssrestraints -psf initial.psf -pdb initial.pdb -o mdff-hbonds.dat -hbonds",
		"package require cispeptide",
		"cispeptide restrain -mol $m -o mdff-cispeptide.dat",
		"package require chirality",
		"chirality restrain -mol $m -o mdff-chirality.dat",
	}
	assert.Equal(t, want, rec.Scripts[0].Script.Lines())
}
