/*
 * geometry.go, part of trpprep
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

	v3 "github.com/rmera/trpprep/v3"
	"gonum.org/v1/gonum/mat"
)

const deg2rad = math.Pi / 180

// Deg2Rad transforms degrees to radians.
func Deg2Rad(f float64) float64 {
	return f * deg2rad
}

// Center returns the geometric center of the atoms with the given indexes
// (all atoms if indexes is nil). An empty, non-nil indexes is an error.
func Center(coords *v3.Matrix, indexes []int) ([3]float64, error) {
	var c [3]float64
	if indexes == nil {
		indexes = allIndexes(coords.NVecs())
	}
	if len(indexes) == 0 {
		return c, newError("can't get the center of zero atoms", "", "Center", ErrNoAtoms)
	}
	for _, i := range indexes {
		v := coords.Vec(i)
		c[0] += v[0]
		c[1] += v[1]
		c[2] += v[2]
	}
	n := float64(len(indexes))
	return [3]float64{c[0] / n, c[1] / n, c[2] / n}, nil
}

// MinMax returns the minimum and maximum values of each coordinate for the
// atoms with the given indexes (all atoms if indexes is nil).
func MinMax(coords *v3.Matrix, indexes []int) (min, max [3]float64, err error) {
	if indexes == nil {
		indexes = allIndexes(coords.NVecs())
	}
	if len(indexes) == 0 {
		return min, max, newError("can't get the extent of zero atoms", "", "MinMax", ErrNoAtoms)
	}
	min = coords.Vec(indexes[0])
	max = min
	for _, i := range indexes[1:] {
		v := coords.Vec(i)
		for k := 0; k < 3; k++ {
			min[k] = math.Min(min[k], v[k])
			max[k] = math.Max(max[k], v[k])
		}
	}
	return min, max, nil
}

// MoveBy translates the atoms with the given indexes (all if nil) by the vector d, in place.
func MoveBy(coords *v3.Matrix, indexes []int, d [3]float64) {
	if indexes == nil {
		indexes = allIndexes(coords.NVecs())
	}
	for _, i := range indexes {
		v := coords.Vec(i)
		coords.SetVec(i, [3]float64{v[0] + d[0], v[1] + d[1], v[2] + d[2]})
	}
}

// RotatorAroundZ returns an operator that will rotate a set of
// coordinates by gamma radians around the z axis, when applied from the right
// to row vectors.
func RotatorAroundZ(gamma float64) *v3.Matrix {
	s, c := math.Sincos(gamma)
	r, _ := v3.NewMatrix([]float64{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	})
	return r
}

// RotateZ rotates all the coordinates in place by deg degrees around the z axis
// through the origin, counterclockwise when seen from +z. This is what VMD's
// "transaxis z deg" does.
func RotateZ(coords *v3.Matrix, deg float64) {
	rot := RotatorAroundZ(Deg2Rad(deg))
	var tmp mat.Dense
	tmp.Mul(coords.Dense, rot.Dense)
	coords.Copy(&tmp)
}

// Distance returns the distance between the points a and b.
func Distance(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func allIndexes(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}
