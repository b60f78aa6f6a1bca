/*
 * select_test.go, part of trpprep
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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	v3 "github.com/rmera/trpprep/v3"
)

func smallMolecule(Te *testing.T) *Molecule {
	Te.Helper()
	mol, err := LoadStructure("testdata/small.psf", "testdata/small.pdb")
	require.NoError(Te, err)
	return mol
}

func TestSelectors(Te *testing.T) {
	mol := smallMolecule(Te)
	cases := []struct {
		name string
		sel  Selector
		want []int
	}{
		{"protein", Protein(), []int{0, 1, 2, 3}},
		{"water", Water(), []int{4, 5, 6}},
		{"ion", Ion(), []int{7}},
		{"lipid", Lipid(), nil},
		{"hydrogen", Hydrogen(), []int{5, 6}},
		{"noh", NoH(), []int{0, 1, 2, 3, 4, 7}},
		{"chain", Chain("W", "I"), []int{4, 5, 6, 7}},
		{"segid regexp", Segid("WT.*"), []int{4, 5, 6}},
		{"segid is anchored", Segid("T1"), nil},
		{"resname", ResName("SOD"), []int{7}},
		{"resid", Resid(1), []int{0, 1, 2, 3}},
		{"resid range", ResidRange(2, 3), []int{4, 5, 6, 7}},
		{"names", Name("C.*", "O"), []int{1, 2, 3}},
		{"element", Element("O"), []int{3, 4}},
		{"index", Index(2, 7), []int{2, 7}},
		{"cylinder", Cylinder(2), []int{0, 1, 7}},
		{"slab", ZSlab(-1, 11), []int{0, 1, 2, 3, 4, 5, 6}},
		{"and", And(Protein(), Name("CA")), []int{1}},
		{"or", Or(Ion(), Name("CA")), []int{1, 7}},
		{"not", Not(Or(Protein(), Water())), []int{7}},
	}
	for _, c := range cases {
		Te.Run(c.name, func(Te *testing.T) {
			assert.Equal(Te, c.want, Select(mol, 0, c.sel))
		})
	}
}

func TestSameResidueAndComplement(Te *testing.T) {
	mol := smallMolecule(Te)
	assert.Equal(Te, []int{4, 5, 6}, SameResidue(mol.Topology, []int{5}))
	assert.Equal(Te, []int{0, 1, 2, 3, 7}, SameResidue(mol.Topology, []int{7, 2}))
	assert.Equal(Te, []int{0, 1, 2, 3, 7}, Complement(mol.Len(), []int{4, 5, 6}))
	assert.Equal(Te, []int{0, 1, 2, 3}, SelectTopology(mol.Topology, Protein()))
	assert.Equal(Te, []int{0, 1, 2, 3, 7}, Complement(mol.Len(), []int{4, 4, 5, 6, 6, 5, 4, 5, 6, 4}))
	assert.Equal(Te, []int{1}, Complement(2, []int{0, 0, 0}))
}

func TestEmptySelection(Te *testing.T) {
	mol := smallMolecule(Te)
	none := Select(mol, 0, ResName("XYZ"))
	require.NotNil(Te, none)
	assert.Empty(Te, none)
	require.NotNil(Te, SelectTopology(mol.Topology, ResName("XYZ")))
	require.NotNil(Te, SameResidue(mol.Topology, nil))
	require.NotNil(Te, Within(mol.Coords[0], none, []int{0}, 5))
	_, err := Center(mol.Coords[0], none)
	assert.ErrorIs(Te, err, ErrNoAtoms)
	_, _, err = MinMax(mol.Coords[0], SelectTopology(mol.Topology, ResName("XYZ")))
	assert.ErrorIs(Te, err, ErrNoAtoms)
}

func TestSelectionYAML(Te *testing.T) {
	doc := `
class: noh
segid: "P.*"
name: ["C", "CA"]
resid_range: [1, 5]
`
	var s Selection
	require.NoError(Te, yaml.Unmarshal([]byte(doc), &s))
	sel, err := s.Selector()
	require.NoError(Te, err)
	mol := smallMolecule(Te)
	assert.Equal(Te, []int{1, 2}, Select(mol, 0, sel))
	assert.Equal(Te, "class=noh segid=P.* resid_range=[1 5] name=[C CA]", s.String())

	_, err = Selection{Class: "sugar"}.Selector()
	require.Error(Te, err)
	_, err = Selection{ResidRange: []int{5, 1}}.Selector()
	require.Error(Te, err)
	_, err = Selection{Names: []string{"C("}}.Selector()
	require.Error(Te, err)
	all, err := Selection{}.Selector()
	require.NoError(Te, err)
	assert.Len(Te, Select(mol, 0, all), mol.Len())
	assert.Equal(Te, "all", Selection{}.String())
}

func TestGeometry(Te *testing.T) {
	c, err := v3.NewMatrix([]float64{
		1, 0, 0,
		3, 2, -2,
		-1, 4, 2,
	})
	require.NoError(Te, err)
	center, err := Center(c, nil)
	require.NoError(Te, err)
	assert.Equal(Te, [3]float64{1, 2, 0}, center)
	min, max, err := MinMax(c, []int{1, 2})
	require.NoError(Te, err)
	assert.Equal(Te, [3]float64{-1, 2, -2}, min)
	assert.Equal(Te, [3]float64{3, 4, 2}, max)
	_, err = Center(c, []int{})
	require.ErrorIs(Te, err, ErrNoAtoms)

	MoveBy(c, nil, [3]float64{-center[0], -center[1], -center[2]})
	center, err = Center(c, nil)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{0, 0, 0}, center[:], 1e-12)

	r, err := v3.NewMatrix([]float64{1, 0, 0, 0, 1, 5})
	require.NoError(Te, err)
	RotateZ(r, -35)
	th := Deg2Rad(-35)
	v := r.Vec(0)
	assert.InDeltaSlice(Te, []float64{math.Cos(th), math.Sin(th), 0}, v[:], 1e-12)
	v = r.Vec(1)
	assert.InDeltaSlice(Te, []float64{-math.Sin(th), math.Cos(th), 5}, v[:], 1e-12)
	assert.InDelta(Te, 5.0, Distance([3]float64{0, 0, 0}, [3]float64{3, 4, 0}), 1e-12)
}

func TestContacts(Te *testing.T) {
	c, err := v3.NewMatrix([]float64{
		0, 0, 0,
		0.4, 0, 0,
		0, 0.5, 0,
		5, 5, 5,
		5.3, 5, 5,
	})
	require.NoError(Te, err)
	top := NewTopology([]*Atom{{}, {}, {}, {}, {}})
	top.Bonds = [][2]int{{3, 4}}
	all := []int{0, 1, 2, 3, 4}
	pairs := Contacts(c, all, all, 0.5, top)
	//0.5 is not a contact, and 3-4 are bonded
	assert.Equal(Te, [][2]int{{0, 1}, {1, 0}}, pairs)
	assert.Equal(Te, [][2]int{{0, 1}, {1, 0}, {3, 4}, {4, 3}}, Contacts(c, all, all, 0.5, nil))
	assert.Equal(Te, [][2]int{{2, 0}, {2, 1}}, Contacts(c, []int{2}, []int{0, 1}, 0.7, nil))
	assert.Nil(Te, Contacts(c, nil, all, 1, nil))

	assert.Equal(Te, []int{0, 1}, Within(c, []int{0, 1, 3}, []int{0, 1}, 0.45))
	assert.Equal(Te, []int{3}, Within(c, []int{3}, []int{4}, 0.5))
	assert.Empty(Te, Within(c, []int{3}, []int{3}, 10))

	other, err := v3.NewMatrix([]float64{
		0.2, 0, 0,
		5, 5, 5.9,
	})
	require.NoError(Te, err)
	assert.Equal(Te, [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 1}, {4, 1}}, ContactsBetween(c, all, other, []int{0, 1}, 1.0))
	assert.Equal(Te, [][2]int{{4, 1}}, ContactsBetween(c, []int{4}, other, []int{0, 1}, 1.0))
	assert.Nil(Te, ContactsBetween(c, all, other, []int{0, 1}, 0))
}
