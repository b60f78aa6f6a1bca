/*
 * pdb_test.go, part of trpprep
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
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v3 "github.com/rmera/trpprep/v3"
)

func TestPDBRead(Te *testing.T) {
	mol, err := PDBFileRead("testdata/small.pdb")
	require.NoError(Te, err)
	require.Equal(Te, 8, mol.Len())
	require.Len(Te, mol.Coords, 1)
	assert.Equal(Te, []float64{30, 30, 30, 90, 90, 90}, mol.Box)

	water := mol.Atom(4)
	assert.Equal(Te, "OH2", water.Name)
	assert.Equal(Te, "TIP3", water.MolName)
	assert.Equal(Te, "W", water.Chain)
	assert.Equal(Te, "WT1", water.Segid)
	assert.Equal(Te, 2, water.MolID)
	assert.Equal(Te, "O", water.Symbol)
	assert.Equal(Te, 4, water.Index)

	ion := mol.Atom(7)
	assert.True(Te, ion.Het)
	assert.Equal(Te, "Na", ion.Symbol)
	assert.Equal(Te, [3]float64{0, 0, -33.5}, mol.Coords[0].Vec(7))
}

func TestPDBReadModels(Te *testing.T) {
	pdb := `MODEL        1
ATOM      1  CA  GLY A   1       1.000   2.000   3.000  1.00  0.00           C
ENDMDL
MODEL        2
ATOM      1  CA  GLY A   1       4.000   5.000   6.000  1.00  0.00           C
ENDMDL
END
`
	mol, err := PDBRead(strings.NewReader(pdb))
	require.NoError(Te, err)
	require.Len(Te, mol.Coords, 2)
	assert.Equal(Te, [3]float64{4, 5, 6}, mol.Coords[1].Vec(0))
	assert.Equal(Te, "C", mol.Atom(0).Symbol)
}

func TestPDBReadErrors(Te *testing.T) {
	_, err := PDBRead(strings.NewReader("REMARK nothing here\nEND\n"))
	require.ErrorIs(Te, err, ErrNoAtoms)

	bad := "ATOM      1  CA  GLY A   1       1.000   x.000   3.000  1.00  0.00           C\n"
	_, err = PDBRead(strings.NewReader(bad))
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "line 1")

	_, err = PDBFileRead("testdata/does-not-exist.pdb")
	var e *Error
	require.ErrorAs(Te, err, &e)
	assert.Equal(Te, "testdata/does-not-exist.pdb", e.FileName())
}

func TestPDBRoundTrip(Te *testing.T) {
	mol, err := PDBFileRead("testdata/small.pdb")
	require.NoError(Te, err)
	name := filepath.Join(Te.TempDir(), "out.pdb")
	require.NoError(Te, PDBFileWrite(name, mol.Coords[0], mol))
	mol2, err := PDBFileRead(name)
	require.NoError(Te, err)
	if diff := cmp.Diff(mol.Atoms, mol2.Atoms); diff != "" {
		Te.Errorf("atoms differ after a write/read cycle (-want +got):\n%s", diff)
	}
	assert.Equal(Te, mol.Box, mol2.Box)
	for i := 0; i < mol.Len(); i++ {
		assert.InDeltaSlice(Te, vecSlice(mol.Coords[0].Vec(i)), vecSlice(mol2.Coords[0].Vec(i)), 1e-3)
	}
}

func TestPDBWriteLayout(Te *testing.T) {
	ats := []*Atom{
		{Name: "CA", ID: 100000, MolName: "POPC", MolID: 10010, Chain: "L", Segid: "MEMB", Symbol: "C", Occupancy: 1},
		{Name: "HG11", ID: 2, MolName: "TIP3", MolID: 3, Segid: "WT1", Symbol: "H"},
	}
	c, err := v3.NewMatrix([]float64{1, 2, 3, -4, -5, -6})
	require.NoError(Te, err)
	mol, err := NewMolecule(NewTopology(ats), c)
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, PDBWrite(&buf, c, mol))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(Te, lines, 4)
	assert.Equal(Te, "ATOM  186a0  CA  POPCL271a       1.000   2.000   3.000  1.00  0.00      MEMB C", lines[1])
	assert.Equal(Te, "ATOM      2 HG11 TIP3    3      -4.000  -5.000  -6.000  0.00  0.00      WT1  H", lines[2])
	assert.Equal(Te, "END", lines[3])
	assert.NotContains(Te, buf.String(), "TER")

	back, err := PDBRead(&buf)
	require.NoError(Te, err)
	assert.Equal(Te, 100000, back.Atom(0).ID)
	assert.Equal(Te, 10010, back.Atom(0).MolID)
	assert.Equal(Te, "POPC", back.Atom(0).MolName)
	assert.Equal(Te, "MEMB", back.Atom(0).Segid)
}

func vecSlice(v [3]float64) []float64 {
	return v[:]
}
