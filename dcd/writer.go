/*
 * writer.go, part of godcd
 *
 * Copyright 2021 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
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
	"fmt"
	"log"

	"github.com/rmera/godcd/cell"
	"github.com/rmera/godcd/dcdfile"
	"github.com/rmera/godcd/units"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

//Writer is a DCD trajectory open for writing. Frames are appended in order.
//The file is not complete until Close is called.
type Writer struct {
	filename string
	file     *dcdfile.File
	natoms   int
	step     int
	dt       float64
	convert  bool
	conv     units.Converter
	scratch  *mat.Dense //positions in native units before they go to the codec.
	raw      *dcdfile.Frame
	writable bool
}

//Create creates the DCD file name, for frames with natoms atoms, and writes
//its header. The name's extension selects compression (.gz, .zst, .lzw) or
//plain DCD.
func Create(name string, natoms int, opts ...WriterOption) (*Writer, error) {
	if natoms <= 0 {
		return nil, newError(ErrMissingAtomCount, name, "Create", "%d atoms given", natoms)
	}
	cfg := writerConfig{convert: true, length: units.Angstrom, step: 1, dt: 1, nsavc: 1}
	for _, o := range opts {
		o(&cfg)
	}
	conv, err := units.NewConverter(units.CHARMM, cfg.length)
	if err != nil {
		return nil, newError(err, name, "Create", "")
	}
	if len(cfg.remarks) > dcdfile.MaxRemarks {
		log.Printf("Remarks for %s are longer than %d characters, they will be truncated", name, dcdfile.MaxRemarks)
		cfg.remarks = dcdfile.TruncateRemarks(cfg.remarks)
	}
	H := dcdfile.Header{
		Atoms:   natoms,
		NSavc:   cfg.nsavc,
		Delta:   cfg.dt * conv.TimePSToNative(),
		Remarks: cfg.remarks,
	}
	file, err := dcdfile.Create(name, H)
	if err != nil {
		return nil, errDecorate(err, "Create")
	}
	W := &Writer{
		filename: name,
		file:     file,
		natoms:   natoms,
		step:     cfg.step,
		dt:       cfg.dt,
		convert:  cfg.convert,
		conv:     conv,
		scratch:  mat.NewDense(natoms, 3, nil),
		raw:      dcdfile.NewFrame(natoms),
		writable: true,
	}
	return W, nil
}

//Len returns the number of atoms per frame.
func (W *Writer) Len() int {
	return W.natoms
}

//NFrames returns the number of frames written so far.
func (W *Writer) NFrames() int {
	return W.file.Len()
}

//DT returns the time between frames, in ps.
func (W *Writer) DT() float64 {
	return W.dt
}

//Step returns the number of steps between frames.
func (W *Writer) Step() int {
	return W.step
}

//Filename returns the name of the trajectory file.
func (W *Writer) Filename() string {
	return W.filename
}

//Writable returns true if frames can be written to W.
func (W *Writer) Writable() bool {
	return W.writable
}

//WriteNext appends ts to the trajectory. Only the positions and the unit cell
//are written. ts is not modified.
func (W *Writer) WriteNext(ts *Timestep) error {
	if !W.writable {
		return newError(ErrClosed, W.filename, "WriteNext", "")
	}
	if ts.Len() != W.natoms {
		return newError(ErrAtomCount, W.filename, "WriteNext", "frame with %d atoms for a trajectory of %d", ts.Len(), W.natoms)
	}
	if err := W.write(ts.Positions, ts.Dimensions); err != nil {
		return errDecorate(err, "WriteNext")
	}
	return nil
}

//WNext appends a frame with the coordinates in towrite, and, optionally, a
//unit cell. The box can be given as A, B, C, alpha, beta, gamma, or as the 3
//box vectors, one after the other. Without a box, an empty unit cell is written.
func (W *Writer) WNext(towrite *mat.Dense, box ...[]float64) error {
	if !W.writable {
		return newError(ErrClosed, W.filename, "WNext", "")
	}
	if r, c := towrite.Dims(); r != W.natoms || c != 3 {
		return newError(ErrAtomCount, W.filename, "WNext", "%d x %d matrix given for %d atoms", r, c, W.natoms)
	}
	var dims cell.Box
	if len(box) > 0 {
		b := box[0]
		switch len(b) {
		case 6:
			copy(dims[:], b)
		case 9:
			var err error
			dims, err = cell.TriclinicBox(r3.Vec{X: b[0], Y: b[1], Z: b[2]}, r3.Vec{X: b[3], Y: b[4], Z: b[5]}, r3.Vec{X: b[6], Y: b[7], Z: b[8]})
			if err != nil {
				return newError(err, W.filename, "WNext", "")
			}
		default:
			return newError(ErrInvalidUnitCell, W.filename, "WNext", "box must have 6 or 9 elements, it has %d", len(b))
		}
	}
	if err := W.write(towrite, dims); err != nil {
		return errDecorate(err, "WNext")
	}
	return nil
}

func (W *Writer) write(pos *mat.Dense, dims cell.Box) error {
	W.scratch.Copy(pos)
	if W.convert {
		f := W.conv.LengthToNative()
		if f != 1 {
			W.scratch.Scale(f, W.scratch)
			dims.ScaleLengths(f)
		}
	}
	for i := 0; i < W.natoms; i++ {
		W.raw.Coords[0][i] = float32(W.scratch.At(i, 0))
		W.raw.Coords[1][i] = float32(W.scratch.At(i, 1))
		W.raw.Coords[2][i] = float32(W.scratch.At(i, 2))
	}
	W.raw.UnitCell = cell.Encode(dims)
	if err := W.file.WriteFrame(W.raw); err != nil {
		return errDecorate(err, "write")
	}
	return nil
}

//Close writes the final frame count to the header and closes the file.
//Calling it more than once is fine.
func (W *Writer) Close() error {
	if W == nil || !W.writable {
		return nil
	}
	W.writable = false
	if err := W.file.Close(); err != nil {
		return errDecorate(err, "Close")
	}
	return nil
}

func (W *Writer) String() string {
	return fmt.Sprintf("DCD writer %s: %d atoms, %d frames written, dt %g ps", W.filename, W.natoms, W.file.Len(), W.dt)
}
