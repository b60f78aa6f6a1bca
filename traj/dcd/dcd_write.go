/*
 * dcd_write.go, part of trpprep
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
	"encoding/binary"
	"io"
	"math"
	"os"

	v3 "github.com/rmera/trpprep/v3"
)

// Writer is a CHARMM/NAMD binary trajectory opened for writing.
type Writer struct {
	natoms    int32
	writable  bool
	filename  string
	frames    int32
	dcd       *os.File
	dcdFields [][]float32
	endian    binary.ByteOrder
}

// NewWriter creates the file filename and writes the header of a little-endian
// CHARMM-style trajectory with natoms atoms per frame. delta is the time step, in AKMA units.
func NewWriter(filename string, natoms int, delta float32) (*Writer, error) {
	D := &Writer{natoms: int32(natoms), filename: filename, endian: binary.LittleEndian}
	if natoms <= 0 {
		return nil, &Error{message: "trajectory needs at least one atom", filename: filename, deco: []string{"NewWriter"}, critical: true}
	}
	var err error
	D.dcd, err = os.Create(filename)
	if err != nil {
		return nil, &Error{message: err.Error(), filename: filename, deco: []string{"os.Create", "NewWriter"}, critical: true, err: err}
	}
	if err := D.writeHeader(delta); err != nil {
		D.dcd.Close()
		return nil, errDecorate(err, "NewWriter")
	}
	D.dcdFields = [][]float32{make([]float32, natoms), make([]float32, natoms), make([]float32, natoms)}
	D.writable = true
	return D, nil
}

// Close closes the file.
func (D *Writer) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	return D.dcd.Close()
}

func (D *Writer) wrap(caller string, err error) error {
	return &Error{message: err.Error(), filename: D.filename, deco: []string{"binary.Write", caller}, critical: true, err: err}
}

func (D *Writer) writeHeader(delta float32) error {
	var icntrl [20]int32
	icntrl[0] = 0 //frames, updated after each write.
	icntrl[2] = 1 //step interval (nsavc)
	icntrl[9] = int32(math.Float32bits(delta))
	icntrl[19] = 24 //charmm version, let's say, 24
	title := make([]byte, 2*mAXTITLE)
	copy(title, "REMARKS CREATED BY TRPPREP")
	for i := len("REMARKS CREATED BY TRPPREP"); i < int(mAXTITLE); i++ {
		title[i] = ' '
	}
	for i := mAXTITLE; i < 2*mAXTITLE; i++ {
		title[i] = ' '
	}
	hdr := []any{
		int32(84), []byte("CORD"), icntrl, int32(84),
		int32(4 + 2*mAXTITLE), int32(2), title, int32(4 + 2*mAXTITLE),
		int32(4), D.natoms, int32(4),
	}
	for _, v := range hdr {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return D.wrap("writeHeader", err)
		}
	}
	return nil
}

// WNext writes the next frame to the trajectory.
func (D *Writer) WNext(towrite *v3.Matrix) error {
	if !D.writable {
		return &Error{message: trajUnIni, filename: D.filename, deco: []string{"WNext"}, critical: true}
	}
	if towrite == nil {
		return &Error{message: "got nil coordinates", filename: D.filename, deco: []string{"WNext"}, critical: true}
	}
	if int32(towrite.NVecs()) != D.natoms {
		return &Error{message: "coordinates don't match the trajectory size", filename: D.filename, deco: []string{"WNext"}, critical: true}
	}
	for i := 0; i < int(D.natoms); i++ {
		D.dcdFields[0][i] = float32(towrite.At(i, 0))
		D.dcdFields[1][i] = float32(towrite.At(i, 1))
		D.dcdFields[2][i] = float32(towrite.At(i, 2))
	}
	for _, block := range D.dcdFields {
		if err := D.writeFloat32Block(block); err != nil {
			return errDecorate(err, "WNext")
		}
	}
	D.frames++
	return errDecorate(D.updateFrames(), "WNext")
}

// writeFloat32Block writes a block of float32s to the file, with its size before and after it.
func (D *Writer) writeFloat32Block(block []float32) error {
	blocksize := int32(len(block)) * 4
	for _, v := range []any{blocksize, block, blocksize} {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return D.wrap("writeFloat32Block", err)
		}
	}
	return nil
}

// DCD requires the number of frames at the begining, so it is rewritten after each frame.
func (D *Writer) updateFrames() error {
	//the frame count goes right after the first record size and the magic number.
	if _, err := D.dcd.Seek(8, io.SeekStart); err != nil {
		return &Error{message: err.Error(), filename: D.filename, deco: []string{"dcd.Seek", "updateFrames"}, critical: true, err: err}
	}
	if err := binary.Write(D.dcd, D.endian, D.frames); err != nil {
		return D.wrap("updateFrames", err)
	}
	if _, err := D.dcd.Seek(0, io.SeekEnd); err != nil {
		return &Error{message: err.Error(), filename: D.filename, deco: []string{"dcd.Seek", "updateFrames"}, critical: true, err: err}
	}
	return nil
}
