/*
 * contacts.go, part of trpprep
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
	"sort"

	v3 "github.com/rmera/trpprep/v3"
)

// cellList puts atoms in cubic cells of side cutoff, so the neighbors of an atom within
// cutoff are always in its own cell or one of the 26 around it.
type cellList struct {
	side  float64
	cells map[[3]int][]int
}

func newCellList(coords *v3.Matrix, indexes []int, side float64) *cellList {
	cl := &cellList{side: side, cells: make(map[[3]int][]int)}
	for _, i := range indexes {
		k := cl.key(coords.Vec(i))
		cl.cells[k] = append(cl.cells[k], i)
	}
	return cl
}

func (cl *cellList) key(v [3]float64) [3]int {
	return [3]int{
		int(math.Floor(v[0] / cl.side)),
		int(math.Floor(v[1] / cl.side)),
		int(math.Floor(v[2] / cl.side)),
	}
}

// neighbors calls f for each atom in the list that is within cutoff of v.
func (cl *cellList) neighbors(coords *v3.Matrix, v [3]float64, cutoff float64, f func(j int)) {
	k := cl.key(v)
	c2 := cutoff * cutoff
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				for _, j := range cl.cells[[3]int{k[0] + dx, k[1] + dy, k[2] + dz}] {
					w := coords.Vec(j)
					d0, d1, d2 := v[0]-w[0], v[1]-w[1], v[2]-w[2]
					if d0*d0+d1*d1+d2*d2 < c2 {
						f(j)
					}
				}
			}
		}
	}
}

// Contacts returns the pairs (i, j), with i in sel1 and j in sel2, of different atoms closer than
// cutoff, excluding the pairs bonded according to top (which can be nil). Pairs are sorted by i, then j.
// If an atom is in both selections, both (i, j) and (j, i) can be returned.
func Contacts(coords *v3.Matrix, sel1, sel2 []int, cutoff float64, top *Topology) [][2]int {
	if len(sel1) == 0 || len(sel2) == 0 || cutoff <= 0 {
		return nil
	}
	var bonded map[[2]int]bool
	if top != nil {
		bonded = top.bondSet()
	}
	cl := newCellList(coords, sel2, cutoff)
	var ret [][2]int
	for _, i := range sel1 {
		cl.neighbors(coords, coords.Vec(i), cutoff, func(j int) {
			if i == j || bonded[[2]int{i, j}] {
				return
			}
			ret = append(ret, [2]int{i, j})
		})
	}
	sortPairs(ret)
	return ret
}

func sortPairs(p [][2]int) {
	sort.Slice(p, func(a, b int) bool {
		if p[a][0] != p[b][0] {
			return p[a][0] < p[b][0]
		}
		return p[a][1] < p[b][1]
	})
}

// ContactsBetween is like Contacts, but the atoms in sel1 are taken from coords1 and those
// in sel2 from coords2, as when looking for clashes between two molecules. No pairs are
// excluded.
func ContactsBetween(coords1 *v3.Matrix, sel1 []int, coords2 *v3.Matrix, sel2 []int, cutoff float64) [][2]int {
	if len(sel1) == 0 || len(sel2) == 0 || cutoff <= 0 {
		return nil
	}
	cl := newCellList(coords2, sel2, cutoff)
	var ret [][2]int
	for _, i := range sel1 {
		cl.neighbors(coords2, coords1.Vec(i), cutoff, func(j int) {
			ret = append(ret, [2]int{i, j})
		})
	}
	sortPairs(ret)
	return ret
}

// Within returns the atoms in sel that are closer than cutoff to at least one atom in ref,
// other than themselves. The result is sorted.
func Within(coords *v3.Matrix, sel, ref []int, cutoff float64) []int {
	ret := []int{}
	if len(sel) == 0 || len(ref) == 0 || cutoff <= 0 {
		return ret
	}
	cl := newCellList(coords, ref, cutoff)
	for _, i := range sel {
		found := false
		cl.neighbors(coords, coords.Vec(i), cutoff, func(j int) {
			if j != i {
				found = true
			}
		})
		if found {
			ret = append(ret, i)
		}
	}
	sort.Ints(ret)
	return ret
}
