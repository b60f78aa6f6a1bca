/*
 * dcd_test.go, part of trpprep
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

package dcd

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v3 "github.com/rmera/trpprep/v3"
)

func testFrames(Te *testing.T) []*v3.Matrix {
	Te.Helper()
	var ret []*v3.Matrix
	for f := 0; f < 3; f++ {
		m, err := v3.NewMatrix([]float64{
			float64(f), 1.5, -2.25,
			10.125, float64(-f), 0,
			3, 4, 5.5 + float64(f),
			-7, 8.75, 9,
		})
		require.NoError(Te, err)
		ret = append(ret, m)
	}
	return ret
}

func writeTraj(Te *testing.T, name string, frames []*v3.Matrix) {
	Te.Helper()
	w, err := NewWriter(name, frames[0].NVecs(), 0.5)
	require.NoError(Te, err)
	for _, f := range frames {
		require.NoError(Te, w.WNext(f))
	}
	require.NoError(Te, w.Close())
}

func checkTraj(Te *testing.T, name string, want []*v3.Matrix) {
	Te.Helper()
	r, err := NewReader(name)
	require.NoError(Te, err)
	defer r.Close()
	assert.Equal(Te, want[0].NVecs(), r.Len())
	assert.Equal(Te, len(want), r.Frames())
	assert.Equal(Te, float32(0.5), r.Timestep())
	got, err := r.ReadAll()
	require.NoError(Te, err)
	require.Len(Te, got, len(want))
	for f := range want {
		for i := 0; i < want[f].NVecs(); i++ {
			w, g := want[f].Vec(i), got[f].Vec(i)
			assert.InDeltaSlice(Te, w[:], g[:], 1e-5, "frame %d atom %d", f, i)
		}
	}
	err = r.Next(nil)
	assert.True(Te, IsLastFrame(err))
}

func TestDCDWriteRead(Te *testing.T) {
	frames := testFrames(Te)
	name := filepath.Join(Te.TempDir(), "traj.dcd")
	writeTraj(Te, name, frames)
	checkTraj(Te, name, frames)
}

func TestDCDCompressed(Te *testing.T) {
	frames := testFrames(Te)
	dir := Te.TempDir()
	plain := filepath.Join(dir, "traj.dcd")
	writeTraj(Te, plain, frames)
	data, err := os.ReadFile(plain)
	require.NoError(Te, err)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err = gw.Write(data)
	require.NoError(Te, err)
	require.NoError(Te, gw.Close())
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "traj.dcd.gz"), gz.Bytes(), 0o644))
	checkTraj(Te, filepath.Join(dir, "traj.dcd.gz"), frames)

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	require.NoError(Te, err)
	_, err = zw.Write(data)
	require.NoError(Te, err)
	require.NoError(Te, zw.Close())
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "traj.dcd.zst"), zs.Bytes(), 0o644))
	checkTraj(Te, filepath.Join(dir, "traj.dcd.zst"), frames)
}

// namdTraj builds a big-endian trajectory with a unit cell block in every frame.
func namdTraj(Te *testing.T, frames [][3][]float32) []byte {
	Te.Helper()
	var buf bytes.Buffer
	e := binary.BigEndian
	var icntrl [20]int32
	icntrl[0] = int32(len(frames))
	icntrl[10] = 1
	icntrl[19] = 24
	natoms := int32(len(frames[0][0]))
	title := bytes.Repeat([]byte{' '}, 80)
	cell := [6]float64{80, 90, 81, 90, 90, 120}
	recs := []any{int32(84), []byte("CORD"), icntrl, int32(84), int32(84), int32(1), title, int32(84), int32(4), natoms, int32(4)}
	for _, f := range frames {
		recs = append(recs, int32(48), cell, int32(48))
		for _, block := range f {
			recs = append(recs, 4*natoms, block, 4*natoms)
		}
	}
	for _, r := range recs {
		require.NoError(Te, binary.Write(&buf, e, r))
	}
	return buf.Bytes()
}

func TestDCDUnitCellBigEndian(Te *testing.T) {
	frames := [][3][]float32{
		{{1, 2}, {3, 4}, {5, 6}},
		{{-1, -2}, {-3, -4}, {-5, -6}},
	}
	name := filepath.Join(Te.TempDir(), "namd.dcd")
	require.NoError(Te, os.WriteFile(name, namdTraj(Te, frames), 0o644))
	r, err := NewReader(name)
	require.NoError(Te, err)
	defer r.Close()
	require.Equal(Te, 2, r.Len())
	got, err := r.ReadAll()
	require.NoError(Te, err)
	require.Len(Te, got, 2)
	assert.Equal(Te, [3]float64{-2, -4, -6}, got[1].Vec(1))
	assert.Equal(Te, [6]float64{80, 90, 81, 90, 90, 120}, r.Cell())
}

func TestDCDErrors(Te *testing.T) {
	dir := Te.TempDir()
	bad := filepath.Join(dir, "bad.dcd")
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(84))
	buf.WriteString("NOPE")
	buf.Write(make([]byte, 84))
	require.NoError(Te, os.WriteFile(bad, buf.Bytes(), 0o644))
	_, err := NewReader(bad)
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "magic")

	_, err = NewReader(filepath.Join(dir, "missing.dcd"))
	var e *Error
	require.ErrorAs(Te, err, &e)
	assert.True(Te, e.Critical())

	frames := testFrames(Te)
	trunc := filepath.Join(dir, "trunc.dcd")
	writeTraj(Te, trunc, frames)
	data, err := os.ReadFile(trunc)
	require.NoError(Te, err)
	require.NoError(Te, os.WriteFile(trunc, data[:len(data)-10], 0o644))
	r, err := NewReader(trunc)
	require.NoError(Te, err)
	got, err := r.ReadAll()
	require.Error(Te, err)
	assert.False(Te, IsLastFrame(err))
	assert.ErrorIs(Te, err, io.ErrUnexpectedEOF)
	assert.Len(Te, got, 2)

	_, err = NewWriter(filepath.Join(dir, "empty.dcd"), 0, 1)
	require.Error(Te, err)
	w, err := NewWriter(filepath.Join(dir, "w.dcd"), 3, 1)
	require.NoError(Te, err)
	require.Error(Te, w.WNext(frames[0]))
	require.NoError(Te, w.Close())
	require.Error(Te, w.WNext(v3.Zeros(3)))
}
