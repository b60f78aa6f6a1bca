/*
 * select.go, part of trpprep
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
	"regexp"
	"strings"
)

// Selector decides whether an atom, at the position pos, belongs to a selection.
type Selector func(at *Atom, pos [3]float64) bool

// Select returns the indexes of the atoms of mol for which sel returns true, using
// the coordinates in the given frame. The result is never nil, so an empty selection
// is not taken for all the atoms by Center, MinMax or MoveBy.
func Select(mol *Molecule, frame int, sel Selector) []int {
	ret := []int{}
	c := mol.Coords[frame]
	for i, at := range mol.Atoms {
		if sel(at, c.Vec(i)) {
			ret = append(ret, i)
		}
	}
	return ret
}

// SelectTopology returns the indexes of the atoms in top for which sel returns true, never nil. sel
// gets the origin as position, so it shouldn't use coordinates.
func SelectTopology(top *Topology, sel Selector) []int {
	ret := []int{}
	for i, at := range top.Atoms {
		if sel(at, [3]float64{}) {
			ret = append(ret, i)
		}
	}
	return ret
}

// SameResidue returns the indexes of all the atoms in top that belong to the same
// residue (segment, chain, residue number and insertion code) as any atom in
// indexes. The result is sorted.
func SameResidue(top *Topology, indexes []int) []int {
	res := make(map[residueKey]bool)
	for _, i := range indexes {
		res[top.Atoms[i].residue()] = true
	}
	ret := []int{}
	for i, at := range top.Atoms {
		if res[at.residue()] {
			ret = append(ret, i)
		}
	}
	return ret
}

// Complement returns the indexes in [0,n) that are not in indexes, sorted.
func Complement(n int, indexes []int) []int {
	in := make([]bool, n)
	for _, i := range indexes {
		in[i] = true
	}
	ret := make([]int, 0, n)
	for i, v := range in {
		if !v {
			ret = append(ret, i)
		}
	}
	return ret
}

// All selects every atom.
func All() Selector {
	return func(*Atom, [3]float64) bool { return true }
}

// Chain selects atoms in any of the given chains.
func Chain(chains ...string) Selector {
	return func(at *Atom, _ [3]float64) bool {
		return inStrings(at.Chain, chains)
	}
}

// Segid selects atoms whose segment ID fully matches the regular expression re.
// It panics if re doesn't compile.
func Segid(re string) Selector {
	r := regexp.MustCompile(`^(?:` + re + `)$`)
	return func(at *Atom, _ [3]float64) bool {
		return r.MatchString(at.Segid)
	}
}

// ResName selects atoms in residues with any of the given names.
func ResName(names ...string) Selector {
	return func(at *Atom, _ [3]float64) bool {
		return inStrings(at.MolName, names)
	}
}

// Resid selects atoms with any of the given residue numbers.
func Resid(ids ...int) Selector {
	return func(at *Atom, _ [3]float64) bool {
		for _, v := range ids {
			if at.MolID == v {
				return true
			}
		}
		return false
	}
}

// ResidRange selects atoms with residue numbers between first and last, both included.
func ResidRange(first, last int) Selector {
	return func(at *Atom, _ [3]float64) bool {
		return at.MolID >= first && at.MolID <= last
	}
}

// Name selects atoms whose name fully matches any of the regular expressions
// given. It panics if one of them doesn't compile.
func Name(patterns ...string) Selector {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(`^(?:`+p+`)$`))
	}
	return func(at *Atom, _ [3]float64) bool {
		for _, r := range res {
			if r.MatchString(at.Name) {
				return true
			}
		}
		return false
	}
}

// Element selects atoms with any of the given chemical symbols.
func Element(symbols ...string) Selector {
	return func(at *Atom, _ [3]float64) bool {
		return inStrings(at.Symbol, symbols)
	}
}

// Index selects the atoms with the given 0-based indexes.
func Index(indexes ...int) Selector {
	set := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		set[i] = true
	}
	return func(at *Atom, _ [3]float64) bool {
		return set[at.Index]
	}
}

// Protein selects atoms in amino acid residues.
func Protein() Selector {
	return func(at *Atom, _ [3]float64) bool { return IsAminoacid(at.MolName) }
}

// Water selects atoms in water residues.
func Water() Selector {
	return func(at *Atom, _ [3]float64) bool { return IsWater(at.MolName) }
}

// Lipid selects atoms in lipid residues.
func Lipid() Selector {
	return func(at *Atom, _ [3]float64) bool { return IsLipid(at.MolName) }
}

// Ion selects monoatomic ions.
func Ion() Selector {
	return func(at *Atom, _ [3]float64) bool { return IsIon(at.MolName) }
}

var hydrogenName = regexp.MustCompile(`^[0-9]?H`)

// Hydrogen selects hydrogen atoms, by element if known, by name otherwise.
func Hydrogen() Selector {
	return func(at *Atom, _ [3]float64) bool {
		if at.Symbol != "" {
			return at.Symbol == "H"
		}
		return hydrogenName.MatchString(at.Name)
	}
}

// NoH selects heavy atoms.
func NoH() Selector {
	return Not(Hydrogen())
}

// Cylinder selects atoms at a distance smaller than radius from the z axis.
func Cylinder(radius float64) Selector {
	r2 := radius * radius
	return func(_ *Atom, pos [3]float64) bool {
		return pos[0]*pos[0]+pos[1]*pos[1] < r2
	}
}

// ZSlab selects atoms with zmin < z < zmax.
func ZSlab(zmin, zmax float64) Selector {
	return func(_ *Atom, pos [3]float64) bool {
		return pos[2] > zmin && pos[2] < zmax
	}
}

// And selects atoms that all of sels select.
func And(sels ...Selector) Selector {
	return func(at *Atom, pos [3]float64) bool {
		for _, s := range sels {
			if !s(at, pos) {
				return false
			}
		}
		return true
	}
}

// Or selects atoms that at least one of sels selects.
func Or(sels ...Selector) Selector {
	return func(at *Atom, pos [3]float64) bool {
		for _, s := range sels {
			if s(at, pos) {
				return true
			}
		}
		return false
	}
}

// Not selects the atoms sel doesn't.
func Not(sel Selector) Selector {
	return func(at *Atom, pos [3]float64) bool {
		return !sel(at, pos)
	}
}

func inStrings(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Selection is a declarative atom selection, for configuration files. All the
// non-empty fields must match for an atom to be selected.
type Selection struct {
	Class   string   `yaml:"class,omitempty" mapstructure:"class"` //protein, water, lipid, ion, hydrogen, noh or all
	Chains  []string `yaml:"chains,omitempty" mapstructure:"chains"`
	Segid   string   `yaml:"segid,omitempty" mapstructure:"segid"` //regular expression
	ResName []string `yaml:"resname,omitempty" mapstructure:"resname"`
	Resid   []int    `yaml:"resid,omitempty" mapstructure:"resid"`
	// ResidRange, if given, has the first and last residue numbers, both included.
	ResidRange []int    `yaml:"resid_range,omitempty" mapstructure:"resid_range"`
	Names      []string `yaml:"name,omitempty" mapstructure:"name"` //regular expressions
	Elements   []string `yaml:"element,omitempty" mapstructure:"element"`
	Index      []int    `yaml:"index,omitempty" mapstructure:"index"`
}

// Selector compiles the selection into a Selector.
func (S Selection) Selector() (Selector, error) {
	var sels []Selector
	switch strings.ToLower(S.Class) {
	case "", "all":
	case "protein":
		sels = append(sels, Protein())
	case "water":
		sels = append(sels, Water())
	case "lipid":
		sels = append(sels, Lipid())
	case "ion":
		sels = append(sels, Ion())
	case "hydrogen":
		sels = append(sels, Hydrogen())
	case "noh":
		sels = append(sels, NoH())
	default:
		return nil, newError(fmt.Sprintf("unknown atom class %q", S.Class), "", "Selection.Selector", nil)
	}
	if len(S.Chains) > 0 {
		sels = append(sels, Chain(S.Chains...))
	}
	if S.Segid != "" {
		if _, err := regexp.Compile(S.Segid); err != nil {
			return nil, newError(fmt.Sprintf("bad segid pattern %q", S.Segid), "", "Selection.Selector", err)
		}
		sels = append(sels, Segid(S.Segid))
	}
	if len(S.ResName) > 0 {
		sels = append(sels, ResName(S.ResName...))
	}
	if len(S.Resid) > 0 {
		sels = append(sels, Resid(S.Resid...))
	}
	if S.ResidRange != nil {
		if len(S.ResidRange) != 2 || S.ResidRange[0] > S.ResidRange[1] {
			return nil, newError(fmt.Sprintf("bad residue range %v", S.ResidRange), "", "Selection.Selector", nil)
		}
		sels = append(sels, ResidRange(S.ResidRange[0], S.ResidRange[1]))
	}
	if len(S.Names) > 0 {
		for _, n := range S.Names {
			if _, err := regexp.Compile(n); err != nil {
				return nil, newError(fmt.Sprintf("bad name pattern %q", n), "", "Selection.Selector", err)
			}
		}
		sels = append(sels, Name(S.Names...))
	}
	if len(S.Elements) > 0 {
		sels = append(sels, Element(S.Elements...))
	}
	if len(S.Index) > 0 {
		sels = append(sels, Index(S.Index...))
	}
	return And(sels...), nil
}

// String returns a short description of the selection, for logs.
func (S Selection) String() string {
	var parts []string
	add := func(k string, v any, empty bool) {
		if !empty {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	add("class", S.Class, S.Class == "")
	add("chains", S.Chains, len(S.Chains) == 0)
	add("segid", S.Segid, S.Segid == "")
	add("resname", S.ResName, len(S.ResName) == 0)
	add("resid", S.Resid, len(S.Resid) == 0)
	add("resid_range", S.ResidRange, len(S.ResidRange) == 0)
	add("name", S.Names, len(S.Names) == 0)
	add("element", S.Elements, len(S.Elements) == 0)
	add("index", S.Index, len(S.Index) == 0)
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}
