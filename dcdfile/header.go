/*
 * header.go, part of godcd
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

package dcdfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

//MaxTitle is the length of each line in the DCD title block.
const MaxTitle int = 80

//MaxRemarks is the longest remark string written to a header (3 title lines).
const MaxRemarks int = 3 * MaxTitle

//charmmVersion is written in the last control slot. X-PLOR leaves it at zero.
const charmmVersion int32 = 24

//Header is the information stored once at the beginning of a DCD file.
type Header struct {
	Atoms    int
	NSet     int     //frames, as stated by the header. Often wrong, see File.Len.
	IStart   int     //first step
	NSavc    int     //integration steps between saved frames
	Delta    float64 //integration time step, in AKMA units
	Fixed    int     //fixed atoms, not supported
	Charmm   int     //CHARMM version, 0 for X-PLOR files
	UnitCell bool    //each frame carries a unit cell record
	FourDims bool    //each frame carries a 4th coordinate block
	Remarks  string
	Endian   binary.ByteOrder
}

//frameSize returns the number of bytes in each frame.
func (H Header) frameSize() int64 {
	block := int64(4 + 4*H.Atoms + 4)
	s := 3 * block
	if H.UnitCell {
		s += 4 + 48 + 4
	}
	if H.FourDims {
		s += block
	}
	return s
}

//readHeader parses the header at the beginning of r. It returns the header
//and its size in bytes.
func readHeader(r io.Reader) (Header, int64, error) {
	var H Header
	var size int64
	NB := bytes.NewReader //shortness sake
	first := make([]byte, 4)
	if _, err := io.ReadFull(r, first); err != nil {
		return H, 0, err
	}
	//The first thing in the file is an 84. If it is not, the file is big endian.
	switch {
	case binary.LittleEndian.Uint32(first) == 84:
		H.Endian = binary.LittleEndian
	case binary.BigEndian.Uint32(first) == 84:
		H.Endian = binary.BigEndian
	default:
		return H, 0, fmt.Errorf("first record is not 84 bytes long: %w", ErrFormat)
	}
	//Then the magic number "CORD".
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return H, 0, err
	}
	if string(magic) != "CORD" {
		return H, 0, fmt.Errorf("wrong magic number %q: %w", string(magic), ErrFormat)
	}
	buf := make([]byte, 80)
	if _, err := io.ReadFull(r, buf); err != nil {
		return H, 0, err
	}
	var icntrl [20]int32
	if err := binary.Read(NB(buf), H.Endian, &icntrl); err != nil {
		return H, 0, err
	}
	H.NSet = int(icntrl[0])
	H.IStart = int(icntrl[1])
	H.NSavc = int(icntrl[2])
	H.Fixed = int(icntrl[8])
	//X-plor sets this last int to zero, charmm sets it to its version number.
	H.Charmm = int(icntrl[19])
	if H.Charmm == 0 {
		return H, 0, fmt.Errorf("X-PLOR trajectory: %w", ErrUnsupported)
	}
	var delta float32
	if err := binary.Read(NB(buf[36:]), H.Endian, &delta); err != nil {
		return H, 0, err
	}
	H.Delta = float64(delta)
	H.UnitCell = icntrl[10] != 0
	H.FourDims = icntrl[11] == 1
	var check int32
	if err := binary.Read(r, H.Endian, &check); err != nil {
		return H, 0, err
	}
	if check != 84 {
		return H, 0, fmt.Errorf("control block not closed by 84: %w", ErrFormat)
	}
	size += 92
	var titlesize, ntitle int32
	if err := binary.Read(r, H.Endian, &titlesize); err != nil {
		return H, 0, err
	}
	if err := binary.Read(r, H.Endian, &ntitle); err != nil {
		return H, 0, err
	}
	if ntitle < 0 || titlesize != 4+int32(MaxTitle)*ntitle {
		return H, 0, fmt.Errorf("title block of %d bytes for %d lines: %w", titlesize, ntitle, ErrFormat)
	}
	title := make([]byte, MaxTitle*int(ntitle))
	if _, err := io.ReadFull(r, title); err != nil {
		return H, 0, err
	}
	if err := binary.Read(r, H.Endian, &check); err != nil {
		return H, 0, err
	}
	if check != titlesize {
		return H, 0, fmt.Errorf("title block: %s: %w", SecurityCheckFailed, ErrFormat)
	}
	H.Remarks = strings.TrimRight(string(title), "\x00 ")
	size += int64(8 + titlesize)
	var natoms [3]int32
	if err := binary.Read(r, H.Endian, &natoms); err != nil {
		return H, 0, err
	}
	//a 4 before and after the number of atoms.
	if natoms[0] != 4 || natoms[2] != 4 || natoms[1] < 0 {
		return H, 0, fmt.Errorf("atom number block: %w", ErrFormat)
	}
	H.Atoms = int(natoms[1])
	size += 12
	if H.Fixed != 0 {
		return H, 0, fmt.Errorf("%d fixed atoms: %w", H.Fixed, ErrUnsupported)
	}
	return H, size, nil
}

//TruncateRemarks cuts remarks to at most MaxRemarks bytes, without
//splitting a UTF-8 character.
func TruncateRemarks(remarks string) string {
	if len(remarks) <= MaxRemarks {
		return remarks
	}
	cut := MaxRemarks
	for cut > 0 && !utf8.RuneStart(remarks[cut]) {
		cut--
	}
	return remarks[:cut]
}

//titleBlock pads the remarks into as many 80-byte lines as needed (at
//least one, at most 3).
func titleBlock(remarks string) []byte {
	remarks = TruncateRemarks(remarks)
	lines := (len(remarks) + MaxTitle - 1) / MaxTitle
	if lines == 0 {
		lines = 1
	}
	title := make([]byte, lines*MaxTitle)
	for i := range title {
		title[i] = ' '
	}
	copy(title, remarks)
	return title
}

//writeHeader writes H at the current position of w, and returns the number
//of bytes written. Only CHARMM-style headers are written, always with a
//unit cell record and never with fixed atoms or a 4th dimension.
func writeHeader(w io.Writer, H Header) (int64, error) {
	var err error
	put := func(data any) {
		if err != nil {
			return
		}
		err = binary.Write(w, H.Endian, data)
	}
	var icntrl [20]int32
	icntrl[0] = int32(H.NSet)
	icntrl[1] = int32(H.IStart)
	icntrl[2] = int32(H.NSavc)
	icntrl[10] = 1 //unit cell
	icntrl[19] = charmmVersion
	put(int32(84))
	put([]byte("CORD"))
	put(icntrl[:9])
	put(float32(H.Delta))
	put(icntrl[10:])
	put(int32(84))
	title := titleBlock(H.Remarks)
	titlesize := int32(4 + len(title))
	put(titlesize)
	put(int32(len(title) / MaxTitle))
	put(title)
	put(titlesize)
	put([3]int32{4, int32(H.Atoms), 4})
	if err != nil {
		return 0, err
	}
	return int64(92 + 8 + titlesize + 12), nil
}

//writeNSet overwrites the frame count in the header of w, which must be
//seekable. The position of w is restored afterwards.
func writeNSet(w io.WriteSeeker, endian binary.ByteOrder, nset int) error {
	current, err := w.Seek(0, io.SeekCurrent) //we'll need it to go back
	if err != nil {
		return err
	}
	//the count goes right after the 84 and the magic number.
	if _, err = w.Seek(8, io.SeekStart); err != nil {
		return err
	}
	if err = binary.Write(w, endian, int32(nset)); err != nil {
		return err
	}
	_, err = w.Seek(current, io.SeekStart)
	return err
}
