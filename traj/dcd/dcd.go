/*
 * dcd.go, part of trpprep
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

// Package dcd reads and writes CHARMM/NAMD binary (DCD) trajectories.
package dcd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	v3 "github.com/rmera/trpprep/v3"
)

const mAXTITLE int32 = 80

// Reader is a CHARMM/NAMD binary trajectory opened for reading. Files compressed with
// gzip or zstd are decompressed on the fly.
type Reader struct {
	natoms     int32
	frames     int32 //as declared in the header, can be 0.
	read       int
	readLast   bool //Have we read the last frame?
	readable   bool //Is it ready to be read?
	filename   string
	extrablock bool
	fourdim    bool
	delta      float32
	cell       [6]float64
	src        io.ReadCloser
	dcd        io.Reader
	dcdFields  [][]float32
	endian     binary.ByteOrder
}

// NewReader opens the trajectory fname for reading. Both byte orders are supported,
// as well as CHARMM and NAMD (>=2.1) files with or without unit cell and 4th dimension
// blocks. Files with fixed atoms and X-PLOR files are not supported.
func NewReader(fname string) (*Reader, error) {
	src, err := openSource(fname)
	if err != nil {
		return nil, errDecorate(err, "NewReader")
	}
	D := &Reader{filename: fname, src: src, dcd: src}
	if err := D.readHeader(); err != nil {
		src.Close()
		return nil, errDecorate(err, "NewReader")
	}
	D.dcdFields = [][]float32{make([]float32, D.natoms), make([]float32, D.natoms), make([]float32, D.natoms)}
	D.readable = true
	return D, nil
}

// Close closes the file.
func (D *Reader) Close() error {
	D.readable = false
	return D.src.Close()
}

// Readable returns true if the object is ready to be read from.
// It doesn't guarantee that there is something to read.
func (D *Reader) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *Reader) Len() int {
	return int(D.natoms)
}

// Frames returns the number of frames declared in the header. Some programs leave
// it as zero, so it is just informative.
func (D *Reader) Frames() int {
	return int(D.frames)
}

// Timestep returns the time step declared in the header, in AKMA units.
func (D *Reader) Timestep() float32 {
	return D.delta
}

// Cell returns the unit cell of the last frame read (a, gamma, b, beta, alpha, c, as stored
// in the file), or zeros if the trajectory has no unit cell.
func (D *Reader) Cell() [6]float64 {
	return D.cell
}

func (D *Reader) errf(caller, format string, a ...any) error {
	return &Error{message: fmt.Sprintf(format, a...), filename: D.filename, deco: []string{caller}, critical: true}
}

func (D *Reader) wrap(caller string, err error) error {
	return &Error{message: err.Error(), filename: D.filename, deco: []string{"binary.Read", caller}, critical: true, err: err}
}

func (D *Reader) readHeader() error {
	D.endian = binary.LittleEndian
	raw := make([]byte, 4)
	if _, err := io.ReadFull(D.dcd, raw); err != nil {
		return D.wrap("readHeader", err)
	}
	//The first thing should be an 84.
	//If this fails it means that the file is big endian.
	if D.endian.Uint32(raw) != 84 {
		D.endian = binary.BigEndian
		if D.endian.Uint32(raw) != 84 {
			return D.errf("readHeader", "%s: bad first record", wrongFormat)
		}
	}
	var hdr struct {
		Magic  [4]byte
		Icntrl [20]int32
		Check  int32
	}
	if err := binary.Read(D.dcd, D.endian, &hdr); err != nil {
		return D.wrap("readHeader", err)
	}
	if string(hdr.Magic[:]) != "CORD" {
		return D.errf("readHeader", "wrong magic number %q", hdr.Magic[:])
	}
	if hdr.Check != 84 {
		return D.errf("readHeader", "%s: bad header record end", wrongFormat)
	}
	//X-plor sets the last int to zero, charmm sets it to its version number.
	if hdr.Icntrl[19] == 0 {
		return D.errf("readHeader", "X-plor DCD not supported")
	}
	D.frames = hdr.Icntrl[0]
	if hdr.Icntrl[8] != 0 {
		return D.errf("readHeader", "fixed atoms not supported")
	}
	D.delta = math.Float32frombits(uint32(hdr.Icntrl[9]))
	D.extrablock = hdr.Icntrl[10] != 0
	D.fourdim = hdr.Icntrl[11] == 1
	//title block
	var size, ntitle int32
	if err := binary.Read(D.dcd, D.endian, &size); err != nil {
		return D.wrap("readHeader", err)
	}
	if err := binary.Read(D.dcd, D.endian, &ntitle); err != nil {
		return D.wrap("readHeader", err)
	}
	if ntitle < 0 || 4+ntitle*mAXTITLE != size {
		return D.errf("readHeader", "%s: bad title block", wrongFormat)
	}
	if _, err := io.CopyN(io.Discard, D.dcd, int64(ntitle*mAXTITLE)); err != nil {
		return D.wrap("readHeader", err)
	}
	var atoms struct {
		End    int32
		Start  int32
		Natoms int32
		Check  int32
	}
	if err := binary.Read(D.dcd, D.endian, &atoms); err != nil {
		return D.wrap("readHeader", err)
	}
	if atoms.End != size || atoms.Start != 4 || atoms.Check != 4 {
		return D.errf("readHeader", "%s: bad atom number block", wrongFormat)
	}
	if atoms.Natoms <= 0 {
		return D.errf("readHeader", "%s: %d atoms", wrongFormat, atoms.Natoms)
	}
	D.natoms = atoms.Natoms
	return nil
}

// Next reads the next frame. If keep is not nil, the coordinates are put in it,
// otherwise they are discarded. keep must have at least as many rows as atoms in the
// trajectory. At the normal end of the trajectory, a *LastFrameError is returned.
func (D *Reader) Next(keep *v3.Matrix) error {
	if !D.readable {
		return D.errf("Next", trajUnIni)
	}
	if keep != nil && keep.NVecs() < int(D.natoms) {
		return D.errf("Next", "%s: %d rows for %d atoms", notEnoughSpace, keep.NVecs(), D.natoms)
	}
	if err := D.nextRaw(D.dcdFields); err != nil {
		if !IsLastFrame(err) {
			D.readable = false
		}
		return errDecorate(err, "Next")
	}
	D.read++
	if keep == nil {
		return nil
	}
	for i := 0; i < int(D.natoms); i++ {
		keep.Set(i, 0, float64(D.dcdFields[0][i]))
		keep.Set(i, 1, float64(D.dcdFields[1][i]))
		keep.Set(i, 2, float64(D.dcdFields[2][i]))
	}
	return nil
}

// ReadAll reads all the remaining frames, and returns them.
func (D *Reader) ReadAll() ([]*v3.Matrix, error) {
	var ret []*v3.Matrix
	for {
		m := v3.Zeros(D.Len())
		err := D.Next(m)
		if IsLastFrame(err) {
			return ret, nil
		}
		if err != nil {
			return ret, errDecorate(err, "ReadAll")
		}
		ret = append(ret, m)
	}
}

func (D *Reader) nextRaw(blocks [][]float32) error {
	if D.readLast {
		return &LastFrameError{filename: D.filename, deco: []string{"nextRaw"}}
	}
	//If there is an extra block we read it as the unit cell.
	//Sadly, even when there is an extra block, it is not present in all
	//snapshots for some trajectories, so we must use the block size to see if
	//there is an extra block or if the X block starts inmediately
	var blocksize int32
	if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
		if errors.Is(err, io.EOF) {
			D.readLast = true
			return &LastFrameError{filename: D.filename, deco: []string{"nextRaw"}}
		}
		return D.wrap("nextRaw", err)
	}
	if D.extrablock && blocksize != D.natoms*4 {
		block, err := D.readByteBlock(blocksize)
		if err != nil {
			return errDecorate(err, "nextRaw")
		}
		if len(block) == 48 {
			binary.Read(bytes.NewReader(block), D.endian, &D.cell)
		}
		if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
			return D.wrap("nextRaw", err)
		}
	}
	for k := 0; k < 3; k++ {
		if k > 0 {
			if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
				return D.wrap("nextRaw", err)
			}
		}
		if blocksize != 4*int32(len(blocks[k])) {
			return D.errf("nextRaw", "%s: coordinate block of %d bytes for %d atoms", wrongFormat, blocksize, len(blocks[k]))
		}
		if err := D.readFloat32Block(blocksize, blocks[k]); err != nil {
			return errDecorate(err, "nextRaw")
		}
	}
	//we skip the 4-D values if they exist. Apparently this is not present in the
	//last snapshot, so an EOF here signals that we have read the last snapshot.
	if D.fourdim {
		if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
			if errors.Is(err, io.EOF) {
				D.readLast = true
				return nil
			}
			return D.wrap("nextRaw", err)
		}
		if _, err := D.readByteBlock(blocksize); err != nil {
			return errDecorate(err, "nextRaw")
		}
	}
	return nil
}

// readFloat32Block reads the contents of a block into block, which must have the
// appropiate size, and checks the block size record at its end.
func (D *Reader) readFloat32Block(blocksize int32, block []float32) error {
	var check int32
	if err := binary.Read(D.dcd, D.endian, block); err != nil {
		return D.wrap("readFloat32Block", err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return D.wrap("readFloat32Block", err)
	}
	if check != blocksize {
		return D.errf("readFloat32Block", "%s: block size %d closed as %d", wrongFormat, blocksize, check)
	}
	return nil
}

// readByteBlock reads blocksize bytes, plus the size record at the end of the block.
func (D *Reader) readByteBlock(blocksize int32) ([]byte, error) {
	if blocksize < 0 {
		return nil, D.errf("readByteBlock", "%s: negative block size", wrongFormat)
	}
	var check int32
	block := make([]byte, blocksize)
	if _, err := io.ReadFull(D.dcd, block); err != nil {
		return nil, D.wrap("readByteBlock", err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return nil, D.wrap("readByteBlock", err)
	}
	if check != blocksize {
		return nil, D.errf("readByteBlock", "failed security check")
	}
	return block, nil
}
