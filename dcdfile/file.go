/*
 * file.go, part of godcd
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

//Package dcdfile reads and writes the bytes of CHARMM/NAMD DCD trajectories:
//the header, frames made of an optional unit cell record and three float32
//coordinate blocks, and seeking by frame index. It does not interpret the
//unit cell nor convert units; that is the job of package dcd.
package dcdfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
)

//Frame is one snapshot as stored on disk.
type Frame struct {
	Coords   [3][]float32 //X, Y and Z blocks, one element per atom.
	UnitCell [6]float64
}

//NewFrame returns a frame with room for natoms atoms.
func NewFrame(natoms int) *Frame {
	F := new(Frame)
	for i := range F.Coords {
		F.Coords[i] = make([]float32, natoms)
	}
	return F
}

//Len returns the number of atoms the frame has room for.
func (F *Frame) Len() int {
	return len(F.Coords[0])
}

//File is a DCD trajectory opened either for reading or for writing.
type File struct {
	filename   string
	format     string
	fh         *os.File
	src        io.ReadSeeker
	dst        io.WriteSeeker
	wb         *WB
	header     Header
	headerSize int64
	frameSize  int64
	nframes    int
	current    int //frame under the cursor
	readable   bool
	writable   bool
	scratch    []byte
}

//Open opens a DCD file for reading. Compressed files (.gz, .zst, .lzw) are
//decompressed in memory.
func Open(name string) (*File, error) {
	D := &File{filename: name, format: compression(name)}
	var size int64
	var err error
	D.fh, D.src, size, err = prepSource(name)
	if err != nil {
		return nil, errDecorate(err, "Open")
	}
	D.header, D.headerSize, err = readHeader(D.src)
	if err != nil {
		D.release()
		return nil, newError("Can't read header", name, "Open", err)
	}
	D.frameSize = D.header.frameSize()
	body := size - D.headerSize
	D.nframes = int(body / D.frameSize)
	if body%D.frameSize != 0 {
		log.Printf("%s ends with %d bytes that don't make a frame. They will be ignored", name, body%D.frameSize)
	}
	D.readable = true
	return D, nil
}

//Create creates a DCD file for writing, and writes the header H to it.
//By default the file is little endian; a different byte order can be given.
//If the name ends in .gz, .zst or .lzw the trajectory is assembled in memory
//and compressed on Close.
func Create(name string, H Header, order ...binary.ByteOrder) (*File, error) {
	D := &File{filename: name, format: compression(name)}
	H.Endian = binary.LittleEndian
	if len(order) > 0 && order[0] != nil {
		H.Endian = order[0]
	}
	if H.Atoms <= 0 {
		return nil, newError("Trajectory not initialized correctly, the number of atoms is not positive", name, "Create", ErrFormat)
	}
	if H.NSavc <= 0 {
		H.NSavc = 1
	}
	H.NSet = 0
	H.Charmm = int(charmmVersion)
	H.UnitCell = true
	H.FourDims = false
	H.Fixed = 0
	var err error
	D.fh, err = os.Create(name)
	if err != nil {
		return nil, newError(UnableToOpen, name, "Create", err)
	}
	D.dst = D.fh
	if D.format != Plain {
		D.wb = new(WB)
		D.dst = D.wb
	}
	D.headerSize, err = writeHeader(D.dst, H)
	if err != nil {
		D.fh.Close()
		return nil, newError("Can't write header", name, "Create", err)
	}
	D.header = H
	D.frameSize = H.frameSize()
	D.writable = true
	return D, nil
}

//Header returns the header of the file.
func (D *File) Header() Header {
	return D.header
}

//Len returns the number of complete frames in the file. For files open for
//reading it is computed from the size of the file, not taken from the header.
func (D *File) Len() int {
	return D.nframes
}

//Natoms returns the number of atoms per frame.
func (D *File) Natoms() int {
	return D.header.Atoms
}

//Readable returns true if frames can be read from D.
func (D *File) Readable() bool {
	return D.readable
}

//Current returns the index of the frame that the next ReadFrame will read.
func (D *File) Current() int {
	return D.current
}

//Tell returns the byte offset of the cursor.
func (D *File) Tell() int64 {
	return D.headerSize + int64(D.current)*D.frameSize
}

//Seek moves the cursor to the beginning of frame i. Seeking to Len() is
//allowed, and leaves the file at its end.
func (D *File) Seek(i int) error {
	if !D.readable {
		return newError("Seek on closed file", D.filename, "Seek", ErrNotReadable)
	}
	if i < 0 || i > D.nframes {
		return newError(fmt.Sprintf("frame %d requested, file has %d", i, D.nframes), D.filename, "Seek", ErrOutOfRange)
	}
	if _, err := D.src.Seek(D.headerSize+int64(i)*D.frameSize, io.SeekStart); err != nil {
		return newError(err.Error(), D.filename, "Seek", err)
	}
	D.current = i
	return nil
}

//ReadFrame reads the frame under the cursor into F and advances the cursor.
//It returns io.EOF if the cursor is already past the last frame.
func (D *File) ReadFrame(F *Frame) error {
	if !D.readable {
		return newError("Read on closed file", D.filename, "ReadFrame", ErrNotReadable)
	}
	if F.Len() != D.header.Atoms {
		return newError(NotEnoughSpace, D.filename, "ReadFrame", ErrFormat)
	}
	if D.current >= D.nframes {
		return io.EOF
	}
	E := D.header.Endian
	if D.header.UnitCell {
		if err := D.readBlock(48, func(b []byte) {
			for i := range F.UnitCell {
				F.UnitCell[i] = float64frombits(E, b[8*i:])
			}
		}); err != nil {
			return errDecorate(err, "ReadFrame")
		}
	} else {
		F.UnitCell = [6]float64{}
	}
	blocksize := 4 * D.header.Atoms
	for k := range F.Coords {
		c := F.Coords[k]
		if err := D.readBlock(blocksize, func(b []byte) {
			for i := range c {
				c[i] = float32frombits(E, b[4*i:])
			}
		}); err != nil {
			return errDecorate(err, "ReadFrame")
		}
	}
	//we skip the 4-D values if they exist.
	if D.header.FourDims {
		if err := D.readBlock(blocksize, func([]byte) {}); err != nil {
			return errDecorate(err, "ReadFrame")
		}
	}
	D.current++
	return nil
}

//readBlock reads a Fortran record of size bytes, checks the size markers
//around it, and hands the contents to use.
func (D *File) readBlock(size int, use func([]byte)) error {
	if cap(D.scratch) < size+8 {
		D.scratch = make([]byte, size+8)
	}
	b := D.scratch[:size+8]
	if _, err := io.ReadFull(D.src, b); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return newError("Truncated frame", D.filename, "readBlock", err)
	}
	E := D.header.Endian
	if int(int32(E.Uint32(b))) != size || int(int32(E.Uint32(b[size+4:]))) != size {
		return newError(SecurityCheckFailed, D.filename, "readBlock", ErrFormat)
	}
	use(b[4 : size+4])
	return nil
}

//WriteFrame appends F to the trajectory.
func (D *File) WriteFrame(F *Frame) error {
	if !D.writable {
		return newError("Write on closed file", D.filename, "WriteFrame", ErrNotWritable)
	}
	if F.Len() != D.header.Atoms || len(F.Coords[1]) != F.Len() || len(F.Coords[2]) != F.Len() {
		return newError("Coordinates don't match the trajectory size", D.filename, "WriteFrame", ErrFormat)
	}
	E := D.header.Endian
	var err error
	put := func(data any) {
		if err != nil {
			return
		}
		err = binary.Write(D.dst, E, data)
	}
	put(int32(48))
	put(F.UnitCell)
	put(int32(48))
	var blocksize int32 = int32(D.header.Atoms) * 4 //the size is required in bytes
	for _, c := range F.Coords {
		put(blocksize)
		put(c)
		put(blocksize)
	}
	if err != nil {
		return newError(err.Error(), D.filename, "WriteFrame", err)
	}
	D.nframes++
	D.current++
	return nil
}

//release closes the OS handle, if there is one.
func (D *File) release() error {
	if D.fh == nil {
		return nil
	}
	err := D.fh.Close()
	D.fh = nil
	return err
}

//Close closes D. For files open for writing, the frame count in the header
//is updated and compressed trajectories are compressed and written out.
//Calling Close more than once does nothing.
func (D *File) Close() error {
	if D == nil {
		return nil
	}
	if D.readable {
		D.readable = false
		D.src = nil
		return D.release()
	}
	if !D.writable {
		return nil
	}
	D.writable = false
	//DCD is silly enough to require the number of frames at the beginning.
	err := writeNSet(D.dst, D.header.Endian, D.nframes)
	if err == nil && D.wb != nil {
		err = compress(D.fh, D.format, D.wb.Bytes())
		D.wb = nil
	}
	if cerr := D.release(); err == nil {
		err = cerr
	}
	if err != nil {
		return newError("Can't finalize trajectory", D.filename, "Close", err)
	}
	return nil
}

func float32frombits(E binary.ByteOrder, b []byte) float32 {
	return math.Float32frombits(E.Uint32(b))
}

func float64frombits(E binary.ByteOrder, b []byte) float64 {
	return math.Float64frombits(E.Uint64(b))
}
