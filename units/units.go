/*
 * units.go, part of godcd
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

//Package units holds the scale factors needed to move lengths and times between
//the native unit system of a trajectory container and the units a caller wants.
//All conversions are a single multiplication.
package units

import "fmt"

//Length is the name of a length unit.
type Length string

//Time is the name of a time unit.
type Time string

const (
	Angstrom   Length = "Angstrom"
	Nanometer  Length = "nm"
	Picometer  Length = "pm"
	Femtometer Length = "fm"
)

const (
	Picosecond  Time = "ps"
	Femtosecond Time = "fs"
	Nanosecond  Time = "ns"
	Second      Time = "second"
	Millisecond Time = "ms"
	Microsecond Time = "us"
	//AKMA is the CHARMM internal time unit.
	AKMA Time = "AKMA"
)

//akmaPS is the length of one AKMA time unit, in ps.
const akmaPS = 4.888821e-2

//How many of each unit make one Angstrom.
var lengthFactor = map[Length]float64{
	Angstrom:   1.0,
	"A":        1.0,
	"Å":        1.0,
	Nanometer:  1.0 / 10.0,
	Picometer:  1e2,
	Femtometer: 1e5,
}

//How many of each unit make one ps.
var timeFactor = map[Time]float64{
	Picosecond:  1.0,
	Femtosecond: 1e3,
	Nanosecond:  1e-3,
	Second:      1e-12,
	Millisecond: 1e-9,
	Microsecond: 1e-6,
	AKMA:        1 / akmaPS,
}

//LengthFactor returns how many u make one Angstrom.
func LengthFactor(u Length) (float64, error) {
	f, ok := lengthFactor[u]
	if !ok {
		return 0, fmt.Errorf("units: unknown length unit %q", string(u))
	}
	return f, nil
}

//TimeFactor returns how many u make one ps.
func TimeFactor(u Time) (float64, error) {
	f, ok := timeFactor[u]
	if !ok {
		return 0, fmt.Errorf("units: unknown time unit %q", string(u))
	}
	return f, nil
}

//ConvertLength returns x, given in from, expressed in to.
func ConvertLength(x float64, from, to Length) (float64, error) {
	ff, err := LengthFactor(from)
	if err != nil {
		return 0, err
	}
	ft, err := LengthFactor(to)
	if err != nil {
		return 0, err
	}
	return x * ft / ff, nil
}

//ConvertTime returns x, given in from, expressed in to.
func ConvertTime(x float64, from, to Time) (float64, error) {
	ff, err := TimeFactor(from)
	if err != nil {
		return 0, err
	}
	ft, err := TimeFactor(to)
	if err != nil {
		return 0, err
	}
	return x * ft / ff, nil
}

//System is the pair of units a container stores raw values in.
type System struct {
	Length Length
	Time   Time
}

//CHARMM is the native system of DCD files: Angstrom and AKMA.
var CHARMM = System{Length: Angstrom, Time: AKMA}

//Converter gives the factors between a native System and the
//length unit requested by a caller. Times are always exchanged in ps.
//The zero Length means Angstrom.
type Converter struct {
	Native System
	Length Length
}

//NewConverter returns a Converter from native to the length unit l, or an
//error if either unit is unknown.
func NewConverter(native System, l Length) (Converter, error) {
	if l == "" {
		l = Angstrom
	}
	if _, err := LengthFactor(l); err != nil {
		return Converter{}, err
	}
	if _, err := LengthFactor(native.Length); err != nil {
		return Converter{}, err
	}
	if _, err := TimeFactor(native.Time); err != nil {
		return Converter{}, err
	}
	return Converter{Native: native, Length: l}, nil
}

func (C Converter) length() Length {
	if C.Length == "" {
		return Angstrom
	}
	return C.Length
}

//LengthNativeTo returns the factor that takes native lengths to the caller unit.
func (C Converter) LengthNativeTo() float64 {
	f, _ := ConvertLength(1, C.Native.Length, C.length())
	return f
}

//LengthToNative returns the factor that takes caller lengths to native ones.
func (C Converter) LengthToNative() float64 {
	f, _ := ConvertLength(1, C.length(), C.Native.Length)
	return f
}

//TimeNativeToPS returns the factor that takes native times to ps.
func (C Converter) TimeNativeToPS() float64 {
	f, _ := ConvertTime(1, C.Native.Time, Picosecond)
	return f
}

//TimePSToNative returns the factor that takes ps to native times.
func (C Converter) TimePSToNative() float64 {
	f, _ := ConvertTime(1, Picosecond, C.Native.Time)
	return f
}
