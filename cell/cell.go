/*
 * cell.go, part of godcd
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

//Package cell translates the 6-number unit-cell record stored in DCD frames
//into box lengths and angles, and back.
//
//The record has no tag saying how it was written. CHARMM and NAMD>2.5 store the
//cosines of the angles, NAMD 2.5 stores the angles in degrees and CHARMM
//since c36b2 stores the box vectors themselves. The slots are always read
//as [A, gamma, B, beta, alpha, C] and the convention is guessed from the values.
package cell

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

//ErrInvalidUnitCell is returned when a box-vector record contains a zero-length
//vector, so its angles are undefined.
var ErrInvalidUnitCell = errors.New("invalid unit cell")

//Record is the unit cell as stored on disk: [A, gamma, B, beta, alpha, C] in
//the two angle conventions, or the 6 unique components of the box matrix.
type Record [6]float64

//Box is the canonical cell: A, B, C, alpha, beta, gamma. Angles in degrees.
type Box [6]float64

//Lengths returns A, B and C.
func (b Box) Lengths() [3]float64 {
	return [3]float64{b[0], b[1], b[2]}
}

//Angles returns alpha, beta and gamma, in degrees.
func (b Box) Angles() [3]float64 {
	return [3]float64{b[3], b[4], b[5]}
}

//ScaleLengths multiplies A, B and C by f. Angles are not touched.
func (b *Box) ScaleLengths(f float64) {
	floats.Scale(f, b[:3])
}

func (b Box) String() string {
	return fmt.Sprintf("A=%.4f B=%.4f C=%.4f alpha=%.3f beta=%.3f gamma=%.3f", b[0], b[1], b[2], b[3], b[4], b[5])
}

//Convention is the way a Record encodes the cell.
type Convention int

const (
	//CosineAngles: slots 1, 3 and 4 hold cos(gamma), cos(beta), cos(alpha).
	CosineAngles Convention = iota
	//DegreeAngles: slots 1, 3 and 4 hold gamma, beta, alpha in degrees.
	DegreeAngles
	//MatrixVectors: the record is the lower triangle of the box matrix.
	MatrixVectors
)

func (c Convention) String() string {
	switch c {
	case CosineAngles:
		return "cosine"
	case DegreeAngles:
		return "degree"
	case MatrixVectors:
		return "matrix"
	}
	return fmt.Sprintf("Convention(%d)", int(c))
}

func isCosine(f float64) bool {
	return f >= -1.0 && f <= 1.0
}

//fromCosine turns a stored cosine into degrees. Going through asin keeps
//orthogonal cells at exactly 90.
func fromCosine(c float64) float64 {
	return 90.0 - math.Asin(c)*90.0/(math.Pi/2)
}

//candidate assembles lengths and angles from r assuming either of the
//angle conventions.
func candidate(r Record, c Convention) Box {
	if c == CosineAngles {
		return Box{r[0], r[2], r[5], fromCosine(r[4]), fromCosine(r[3]), fromCosine(r[1])}
	}
	return Box{r[0], r[2], r[5], r[4], r[3], r[1]}
}

//sane is false if any value is negative or any angle goes over 180.
func sane(b Box) bool {
	for _, v := range b {
		if v < 0 {
			return false
		}
	}
	for _, v := range b[3:] {
		if v > 180 {
			return false
		}
	}
	return true
}

//Classify guesses the convention used to write r.
func Classify(r Record) Convention {
	c := DegreeAngles
	if isCosine(r[1]) && isCosine(r[3]) && isCosine(r[4]) {
		c = CosineAngles
	}
	if !sane(candidate(r, c)) {
		return MatrixVectors
	}
	return c
}

//Decode returns the canonical box encoded in r, together with the convention
//it was found in.
func Decode(r Record) (Box, Convention, error) {
	c := Classify(r)
	if c != MatrixVectors {
		return candidate(r, c), c, nil
	}
	e1 := r3.Vec{X: r[0], Y: r[1], Z: r[3]}
	e2 := r3.Vec{X: r[1], Y: r[2], Z: r[4]}
	e3 := r3.Vec{X: r[3], Y: r[4], Z: r[5]}
	b, err := TriclinicBox(e1, e2, e3)
	return b, c, err
}

//Encode returns the record for b in the degree convention. This is the only
//convention ever written, so a file read in any other one changes on disk when
//it is written back.
func Encode(b Box) Record {
	return Record{b[0], b[5], b[1], b[4], b[3], b[2]}
}

func angle(a, b r3.Vec) float64 {
	cos := r3.Dot(a, b) / (r3.Norm(a) * r3.Norm(b))
	//rounding can take it slightly out of range.
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180.0 / math.Pi
}

//TriclinicBox returns the lengths and angles of the cell spanned by x, y and z.
func TriclinicBox(x, y, z r3.Vec) (Box, error) {
	var b Box
	for i, v := range [3]r3.Vec{x, y, z} {
		n := r3.Norm(v)
		if n == 0 {
			return b, fmt.Errorf("cell: box vector %d has zero length: %w", i+1, ErrInvalidUnitCell)
		}
		b[i] = n
	}
	b[3] = angle(y, z)
	b[4] = angle(x, z)
	b[5] = angle(x, y)
	return b, nil
}

//Vectors returns the box vectors for b, with the first along x and the
//second in the xy plane.
func Vectors(b Box) ([3]r3.Vec, error) {
	var ret [3]r3.Vec
	if b[0] <= 0 || b[1] <= 0 || b[2] <= 0 {
		return ret, fmt.Errorf("cell: non-positive box length in %v: %w", b, ErrInvalidUnitCell)
	}
	for _, a := range b[3:] {
		if a <= 0 || a >= 180 {
			return ret, fmt.Errorf("cell: box angle %v out of (0,180): %w", a, ErrInvalidUnitCell)
		}
	}
	rad := math.Pi / 180.0
	ca, cb, cg := math.Cos(b[3]*rad), math.Cos(b[4]*rad), math.Cos(b[5]*rad)
	sg := math.Sin(b[5] * rad)
	ret[0] = r3.Vec{X: b[0]}
	ret[1] = r3.Vec{X: b[1] * cg, Y: b[1] * sg}
	zx := b[2] * cb
	zy := b[2] * (ca - cb*cg) / sg
	zz2 := b[2]*b[2] - zx*zx - zy*zy
	if zz2 <= 0 {
		return ret, fmt.Errorf("cell: angles in %v do not close a box: %w", b, ErrInvalidUnitCell)
	}
	ret[2] = r3.Vec{X: zx, Y: zy, Z: math.Sqrt(zz2)}
	return ret, nil
}

//Volume returns the volume of b, or 0 if b is not a valid cell.
func Volume(b Box) float64 {
	v, err := Vectors(b)
	if err != nil {
		return 0
	}
	return math.Abs(r3.Dot(v[0], r3.Cross(v[1], v[2])))
}
