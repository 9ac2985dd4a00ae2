/*
 * errors.go, part of godcd
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
	"errors"
	"fmt"

	"github.com/rmera/godcd/cell"
	"github.com/rmera/godcd/dcdfile"
)

//Kinds of errors returned by this package. Match them with errors.Is.
var (
	//ErrInvalidUnitCell: a box-vector unit cell has a zero-length vector.
	ErrInvalidUnitCell = cell.ErrInvalidUnitCell
	//ErrEndOfTrajectory: Next was called on the last frame. Not critical.
	ErrEndOfTrajectory = errors.New("end of trajectory")
	//ErrMissingAtomCount: a Writer was requested without a number of atoms.
	ErrMissingAtomCount = errors.New("number of atoms required")
	//ErrNoData: Timeseries was given an empty atom selection.
	ErrNoData = errors.New("timeseries requires at least one atom to analyze")
	//ErrFrameOutOfRange: a frame index past either end of the trajectory.
	ErrFrameOutOfRange = errors.New("frame index out of range")
	//ErrAtomOutOfRange: an atom index not present in the trajectory.
	ErrAtomOutOfRange = dcdfile.ErrAtomIndex
	//ErrZeroStep: a frame Range with a step of zero.
	ErrZeroStep = errors.New("step can't be zero")
	//ErrBadOrder: an axis order that is not a permutation of "afc".
	ErrBadOrder = dcdfile.ErrBadOrder
	//ErrAtomCount: a frame with a number of atoms different from the trajectory's.
	ErrAtomCount = errors.New("coordinates don't match the trajectory size")
	//ErrClosed: the Reader or Writer has been closed.
	ErrClosed = errors.New("trajectory closed")
)

//errDecorate adds caller to the decorations of err if it is an Error, or
//wraps it in a critical Error otherwise, keeping it reachable by errors.Is.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e Error
	if errors.As(err, &e) {
		e.deco = append(e.deco, caller)
		return e
	}
	var l lastFrameError
	if errors.As(err, &l) {
		l.deco = append(l.deco, caller)
		return l
	}
	return Error{message: err.Error(), deco: []string{caller}, critical: true, cause: err}
}

//Error is the general structure for DCD trajectory errors. It fullfills
//the gochem Error and TrajError interfaces.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
	cause    error
}

func newError(cause error, filename, caller string, format string, args ...any) Error {
	msg := cause.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return Error{message: msg, filename: filename, deco: []string{caller}, critical: true, cause: cause}
}

func (err Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (E Error) Decorate(deco string) []string {
	//Even thought this method does not use a pointer as a receiver, and tries to alter the received,
	//it should work, since E.deco is a slice, and hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file (always "dcd") associated to the error
func (err Error) Format() string { return "dcd" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

//Unwrap returns the kind of error, or the underlying I/O error.
func (err Error) Unwrap() error { return err.cause }

//lastFrameError signals the normal end of a trajectory.
type lastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing, it only marks the error as the
//harmless kind.
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "dcd" }

func (E lastFrameError) Is(target error) bool { return target == ErrEndOfTrajectory }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) lastFrameError {
	return lastFrameError{fileName: filename, deco: []string{caller}}
}
