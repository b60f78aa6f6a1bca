/*
 * psf_test.go, part of trpprep
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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v3 "github.com/rmera/trpprep/v3"
)

func TestPSFRead(Te *testing.T) {
	top, err := PSFFileRead("testdata/small.psf")
	require.NoError(Te, err)
	require.Equal(Te, 8, top.Len())
	assert.Equal(Te, []string{"REMARKS small test system"}, top.Remarks)
	assert.Equal(Te, [][2]int{{0, 1}, {1, 2}, {2, 3}, {4, 5}, {4, 6}}, top.Bonds)
	assert.Equal(Te, [][3]int{{0, 1, 2}, {1, 2, 3}, {5, 4, 6}}, top.Angles)
	assert.Equal(Te, [][4]int{{0, 1, 2, 3}}, top.Dihedrals)
	assert.Empty(Te, top.Impropers)
	assert.Equal(Te, [][2]int{{0, -1}}, top.Donors)
	assert.Equal(Te, [][2]int{{3, 2}}, top.Acceptors)

	sod := top.Atom(7)
	assert.Equal(Te, "ION", sod.Segid)
	assert.Equal(Te, "SOD", sod.MolName)
	assert.Equal(Te, "Na", sod.Symbol)
	assert.InDelta(Te, 1.0, sod.Charge, 1e-9)
	assert.Equal(Te, "H", top.Atom(5).Symbol)
	assert.Equal(Te, "HT", top.Atom(5).Type)
}

func TestPSFRoundTrip(Te *testing.T) {
	top, err := PSFFileRead("testdata/small.psf")
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, PSFWrite(&buf, top))
	assert.True(Te, strings.HasPrefix(buf.String(), "PSF\n"))
	assert.Contains(Te, buf.String(), "       5 !NBOND: bonds\n       1       2       2       3       3       4       5       6\n       5       7\n")
	back, err := PSFRead(&buf)
	require.NoError(Te, err)
	if diff := cmp.Diff(top, back); diff != "" {
		Te.Errorf("topology differs after a write/read cycle (-want +got):\n%s", diff)
	}
}

func TestPSFExtAndCMAP(Te *testing.T) {
	ats := make([]*Atom, 8)
	for i := range ats {
		ats[i] = &Atom{Name: "CA", MolName: "ALA", MolID: i + 1, Segid: "PROTEIN1", Type: "CT1", Mass: 12.011, ID: i + 1}
	}
	top := NewTopology(ats)
	top.CrossTerms = [][8]int{{0, 1, 2, 3, 4, 5, 6, 7}}
	var buf bytes.Buffer
	require.NoError(Te, PSFWrite(&buf, top))
	assert.True(Te, strings.HasPrefix(buf.String(), "PSF EXT CMAP\n"))
	back, err := PSFRead(&buf)
	require.NoError(Te, err)
	assert.Equal(Te, "PROTEIN1", back.Atom(0).Segid)
	assert.Equal(Te, top.CrossTerms, back.CrossTerms)
}

func TestPSFReadErrors(Te *testing.T) {
	_, err := PSFRead(strings.NewReader("not a psf\n"))
	require.Error(Te, err)
	bad := `PSF

       1 !NATOM
       1 P1   1    ALA  N    NH1   -0.470000       14.0070           0

       1 !NBOND: bonds
       1       2
`
	_, err = PSFRead(strings.NewReader(bad))
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "out of range")
}

func TestSubset(Te *testing.T) {
	top, err := PSFFileRead("testdata/small.psf")
	require.NoError(Te, err)
	sub, err := top.Subset([]int{1, 2, 3, 4, 5})
	require.NoError(Te, err)
	require.Equal(Te, 5, sub.Len())
	assert.Equal(Te, "CA", sub.Atom(0).Name)
	assert.Equal(Te, 1, sub.Atom(0).ID)
	assert.Equal(Te, 0, sub.Atom(0).Index)
	//N (0) and H2 (6) are gone, so every term with them goes too.
	assert.Equal(Te, [][2]int{{0, 1}, {1, 2}, {3, 4}}, sub.Bonds)
	assert.Equal(Te, [][3]int{{0, 1, 2}}, sub.Angles)
	assert.Empty(Te, sub.Dihedrals)
	assert.Empty(Te, sub.Donors)
	assert.Equal(Te, [][2]int{{2, 1}}, sub.Acceptors)
	//the original is untouched
	assert.Equal(Te, 2, top.Atom(1).ID)

	_, err = top.Subset([]int{0, 0})
	require.Error(Te, err)
	_, err = top.Subset([]int{8})
	require.Error(Te, err)
}

func TestLoadStructure(Te *testing.T) {
	mol, err := LoadStructure("testdata/small.psf", "testdata/small.pdb")
	require.NoError(Te, err)
	assert.Equal(Te, "A", mol.Atom(0).Chain)
	assert.Equal(Te, "NH1", mol.Atom(0).Type)
	assert.Len(Te, mol.Bonds, 5)
	assert.Equal(Te, []float64{30, 30, 30, 90, 90, 90}, mol.Box)

	dir := Te.TempDir()
	coor := filepath.Join(dir, "min.coor")
	require.NoError(Te, NAMDBinFileWrite(coor, mol.Coords[0]))
	bin, err := LoadStructure("testdata/small.psf", coor)
	require.NoError(Te, err)
	for i := 0; i < mol.Len(); i++ {
		assert.Equal(Te, mol.Coords[0].Vec(i), bin.Coords[0].Vec(i))
	}

	short, err := v3.NewMatrix([]float64{1, 2, 3})
	require.NoError(Te, err)
	require.NoError(Te, NAMDBinFileWrite(coor, short))
	_, err = LoadStructure("testdata/small.psf", coor)
	require.ErrorIs(Te, err, ErrMismatch)

	pdb, err := os.ReadFile("testdata/small.pdb")
	require.NoError(Te, err)
	lines := strings.Split(string(pdb), "\n")
	trunc := filepath.Join(dir, "short.pdb")
	require.NoError(Te, os.WriteFile(trunc, []byte(strings.Join(append(lines[:4], "END"), "\n")), 0o644))
	_, err = LoadStructure("testdata/small.psf", trunc)
	require.ErrorIs(Te, err, ErrMismatch)
}

func TestNAMDBinBigEndian(Te *testing.T) {
	data := []byte{0, 0, 0, 1, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0, 0x40, 0, 0, 0, 0, 0, 0, 0, 0x40, 0x08, 0, 0, 0, 0, 0, 0}
	m, err := NAMDBinRead(bytes.NewReader(data))
	require.NoError(Te, err)
	assert.Equal(Te, [3]float64{1, 2, 3}, m.Vec(0))
}
