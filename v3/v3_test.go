/*
 * v3_test.go, part of trpprep
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

package v3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(Te, err)
	assert.Equal(Te, 2, A.NVecs())
	assert.Equal(Te, [3]float64{4, 5, 6}, A.Vec(1))

	_, err = NewMatrix([]float64{1, 2})
	require.Error(Te, err)
}

func TestViews(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(Te, err)
	view := A.VecView(1)
	view.Set(0, 0, 100)
	assert.Equal(Te, 100.0, A.At(1, 0), "changes in a view must be seen in the parent")
	assert.Equal(Te, 2, A.View(1, 2).NVecs())
}

func TestSomeVecs(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18})
	require.NoError(Te, err)
	cind := []int{1, 3, 5}
	B := Zeros(3)
	require.NoError(Te, B.SomeVecsSafe(A, cind))
	assert.Equal(Te, [3]float64{10, 11, 12}, B.Vec(1))

	B.Set(2, 2, 66)
	A.SetVecs(B, cind)
	assert.Equal(Te, 66.0, A.At(5, 2))

	C := Zeros(2)
	require.Error(Te, C.SomeVecsSafe(A, cind))
	require.Error(Te, B.SomeVecsSafe(A, []int{1, 2, 40}))
}

func TestAddSubVec(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(Te, err)
	row, err := NewMatrix([]float64{10, 20, 30})
	require.NoError(Te, err)
	A.AddVec(A, row)
	assert.Equal(Te, [3]float64{14, 25, 36}, A.Vec(1))
	A.SubVec(A, row)
	assert.Equal(Te, [3]float64{1, 2, 3}, A.Vec(0))

	//subtracting one of its own vectors
	A.SubVec(A, A.VecView(0))
	assert.Equal(Te, [3]float64{0, 0, 0}, A.Vec(0))
	assert.Equal(Te, [3]float64{3, 3, 3}, A.Vec(1))
}
