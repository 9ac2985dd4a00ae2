/*
 * reader.go, part of godcd
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

//Package dcd reads and writes CHARMM/NAMD DCD trajectories frame by frame,
//decoding the unit cell into lengths and angles whichever of the historical
//conventions the file uses, and keeping track of time and units.
//
//Positions are in Angstrom (or the unit requested) and times in ps. The
//unit cell is always written with the angles in degrees, in the order
//[A, gamma, B, beta, alpha, C], as recent NAMD and VMD do.
package dcd

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/rmera/godcd/cell"
	"github.com/rmera/godcd/dcdfile"
	"github.com/rmera/godcd/units"
	"gonum.org/v1/gonum/mat"
)

//Reader is a DCD trajectory open for reading. It keeps a cursor, so it is
//not safe for concurrent use; open the file again for a second cursor.
type Reader struct {
	filename string
	file     *dcdfile.File
	header   dcdfile.Header
	natoms   int
	nframes  int
	frame    int //index of the last frame read, -1 if none.
	dt       float64
	convert  bool
	conv     units.Converter
	ts       *Timestep      //last frame read. Fully rewritten on each read.
	raw      *dcdfile.Frame //scratch for the codec
	readable bool

	concBuffer []*dcdfile.Frame
}

//Open opens the DCD file name for reading. The first frame is read right
//away, so Dimensions and Timestep are available immediately, and the reader
//is left on frame 0.
func Open(name string, opts ...ReaderOption) (*Reader, error) {
	cfg := readerConfig{convert: true, length: units.Angstrom}
	for _, o := range opts {
		o(&cfg)
	}
	conv, err := units.NewConverter(units.CHARMM, cfg.length)
	if err != nil {
		return nil, newError(err, name, "Open", "")
	}
	file, err := dcdfile.Open(name)
	if err != nil {
		return nil, errDecorate(err, "Open")
	}
	R := &Reader{
		filename: name,
		file:     file,
		header:   file.Header(),
		natoms:   file.Natoms(),
		nframes:  file.Len(),
		frame:    -1,
		convert:  cfg.convert,
		conv:     conv,
	}
	R.dt = cfg.dt
	if !cfg.hasDT {
		R.dt = R.header.Delta * conv.TimeNativeToPS() * float64(R.header.NSavc)
	}
	R.ts = NewTimestep(R.natoms)
	R.ts.DT = R.dt
	R.raw = dcdfile.NewFrame(R.natoms)
	R.readable = true
	if R.nframes == 0 {
		log.Printf("Trajectory %s has no frames", name)
		return R, nil
	}
	if err := R.file.ReadFrame(R.raw); err != nil {
		R.Close()
		return nil, errDecorate(err, "Open")
	}
	if err := R.frameToTS(R.raw, 0); err != nil {
		R.Close()
		return nil, errDecorate(err, "Open")
	}
	R.frame = 0
	//Leave the file ready for the next frame, or at the start if there is only one.
	next := 1
	if R.nframes == 1 {
		next = 0
	}
	if err := R.file.Seek(next); err != nil {
		R.Close()
		return nil, errDecorate(err, "Open")
	}
	return R, nil
}

//lengthFactor is the factor that takes lengths read from the file to
//those returned by R.
func (R *Reader) lengthFactor() float64 {
	if !R.convert {
		return 1
	}
	return R.conv.LengthNativeTo()
}

//frameMeta decodes the unit cell of raw and sets every field of R.ts but
//the positions, as frame number frame.
func (R *Reader) frameMeta(raw *dcdfile.Frame, frame int) error {
	box, conv, err := cell.Decode(cell.Record(raw.UnitCell))
	if err != nil {
		return newError(err, R.filename, "frameMeta", "frame %d: %s", frame, err.Error())
	}
	ts := R.ts
	ts.Frame = frame
	ts.DT = R.dt
	ts.Time = float64(frame) * R.dt
	ts.Offset = R.file.Tell()
	ts.Dimensions = box
	ts.Dimensions.ScaleLengths(R.lengthFactor())
	ts.Convention = conv
	return nil
}

//fillPositions sets ts to the coordinates in raw times f.
func fillPositions(ts *Timestep, raw *dcdfile.Frame, f float64) {
	natoms := raw.Len()
	if ts.Len() != natoms {
		ts.Positions = newPositions(natoms)
	}
	for i := 0; i < natoms; i++ {
		ts.Positions.Set(i, 0, f*float64(raw.Coords[0][i]))
		ts.Positions.Set(i, 1, f*float64(raw.Coords[1][i]))
		ts.Positions.Set(i, 2, f*float64(raw.Coords[2][i]))
	}
}

//frameToTS decodes raw into R.ts, as frame number frame.
func (R *Reader) frameToTS(raw *dcdfile.Frame, frame int) error {
	if err := R.frameMeta(raw, frame); err != nil {
		return err
	}
	fillPositions(R.ts, raw, R.lengthFactor())
	return nil
}

//Readable returns true if frames can be read from R.
func (R *Reader) Readable() bool {
	return R.readable
}

//Len returns the number of atoms per frame.
func (R *Reader) Len() int {
	return R.natoms
}

//NFrames returns the number of frames in the trajectory.
func (R *Reader) NFrames() int {
	return R.nframes
}

//DT returns the time between frames, in ps.
func (R *Reader) DT() float64 {
	return R.dt
}

//Frame returns the index of the last frame read, or -1 if none has been read
//since the trajectory was (re)opened.
func (R *Reader) Frame() int {
	return R.frame
}

//Header returns the header of the file, as read when it was opened.
func (R *Reader) Header() dcdfile.Header {
	return R.header
}

//Filename returns the name of the trajectory file.
func (R *Reader) Filename() string {
	return R.filename
}

//Dimensions returns the unit cell of the last frame read.
func (R *Reader) Dimensions() cell.Box {
	return R.ts.Dimensions
}

//Timestep returns a copy of the last frame read.
func (R *Reader) Timestep() *Timestep {
	return R.ts.Copy()
}

//Close closes the file. Calling it more than once is fine.
func (R *Reader) Close() error {
	if R == nil || !R.readable {
		return nil
	}
	R.readable = false
	if err := R.file.Close(); err != nil {
		return errDecorate(err, "Close")
	}
	return nil
}

//Reopen closes and opens the file again, leaving the reader before the
//first frame, so the following Next returns frame 0. The header is not read again.
func (R *Reader) Reopen() error {
	if err := R.Close(); err != nil {
		return errDecorate(err, "Reopen")
	}
	file, err := dcdfile.Open(R.filename)
	if err != nil {
		return errDecorate(err, "Reopen")
	}
	R.file = file
	R.ts.Frame = 0
	R.frame = -1
	R.readable = true
	return nil
}

//Seek places the reader so that the following Next returns frame i.
//Negative values count from the end.
func (R *Reader) Seek(i int) error {
	if !R.readable {
		return newError(ErrClosed, R.filename, "Seek", "")
	}
	if i < 0 {
		i += R.nframes
	}
	if i < 0 || i >= R.nframes {
		return newError(ErrFrameOutOfRange, R.filename, "Seek", "frame %d requested, trajectory has %d", i, R.nframes)
	}
	if err := R.file.Seek(i); err != nil {
		return errDecorate(err, "Seek")
	}
	R.frame = i - 1
	return nil
}

//next reads the following frame into R.ts.
func (R *Reader) next() error {
	if !R.readable {
		return newError(ErrClosed, R.filename, "next", "")
	}
	if R.frame == R.nframes-1 {
		return newlastFrameError(R.filename, "next")
	}
	if err := R.file.ReadFrame(R.raw); err != nil {
		if errors.Is(err, io.EOF) {
			return newlastFrameError(R.filename, "next")
		}
		return errDecorate(err, "next")
	}
	R.frame++
	return R.frameToTS(R.raw, R.frame)
}

//Next reads the following frame and returns it as a new Timestep. At the
//end of the trajectory it returns an error for which errors.Is(err,
//ErrEndOfTrajectory) holds.
func (R *Reader) Next() (*Timestep, error) {
	if err := R.next(); err != nil {
		return nil, errDecorate(err, "Next")
	}
	return R.ts.Copy(), nil
}

//NextInto is like Next, but overwrites ts instead of allocating a new Timestep.
func (R *Reader) NextInto(ts *Timestep) error {
	if err := R.next(); err != nil {
		return errDecorate(err, "NextInto")
	}
	ts.CopyFrom(R.ts)
	return nil
}

//ReadFrame returns frame i. It gives the same result as reaching the frame
//with successive calls to Next.
func (R *Reader) ReadFrame(i int) (*Timestep, error) {
	if err := R.Seek(i); err != nil {
		return nil, errDecorate(err, "ReadFrame")
	}
	return R.Next()
}

//NextCoords reads the following frame into coords, which must have Len() rows
//and 3 columns. If coords is nil, the frame is read and discarded. If box is
//given, it is filled with the unit cell: the 3 box vectors one after the other
//if it has room for 9 numbers, or A, B, C, alpha, beta, gamma if it has room for 6.
func (R *Reader) NextCoords(coords *mat.Dense, box ...[]float64) error {
	if err := R.next(); err != nil {
		return errDecorate(err, "NextCoords")
	}
	if coords != nil && R.ts.Positions != nil {
		if r, c := coords.Dims(); r != R.natoms || c != 3 {
			return newError(ErrAtomCount, R.filename, "NextCoords", "%d x %d matrix given for %d atoms", r, c, R.natoms)
		}
		coords.Copy(R.ts.Positions)
	}
	if len(box) == 0 {
		return nil
	}
	b := box[0]
	switch {
	case len(b) >= 9:
		v, err := cell.Vectors(R.ts.Dimensions)
		if err != nil {
			//Not critical: many trajectories don't carry a box.
			log.Printf("Frame %d of %s does not contain a valid box: %s", R.frame, R.filename, err.Error())
			for i := range b[:9] {
				b[i] = 0
			}
			return nil
		}
		for i, vec := range v {
			b[3*i], b[3*i+1], b[3*i+2] = vec.X, vec.Y, vec.Z
		}
	case len(b) >= 6:
		copy(b, R.ts.Dimensions[:])
	default:
		return newError(ErrAtomCount, R.filename, "NextCoords", "box slice too short (%d)", len(b))
	}
	return nil
}

//Writer returns a Writer for name with the same number of atoms, time step
//and length units as R. Further options are applied on top.
func (R *Reader) Writer(name string, opts ...WriterOption) (*Writer, error) {
	base := []WriterOption{WithTimestep(R.dt), WriteLengthUnit(R.conv.Length)}
	if !R.convert {
		base = append(base, WriteWithoutUnitConversion())
	}
	W, err := Create(name, R.natoms, append(base, opts...)...)
	if err != nil {
		return nil, errDecorate(err, "Writer")
	}
	return W, nil
}

func (R *Reader) String() string {
	return fmt.Sprintf("DCD %s: %d atoms, %d frames, dt %g ps", R.filename, R.natoms, R.nframes, R.dt)
}
