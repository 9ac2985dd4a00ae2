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

package dcdfile

import (
	"errors"
	"fmt"
)

//errDecorate adds the caller's name to err, if err is an Error. Other errors
//are wrapped into a new, critical, Error.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e Error
	if errors.As(err, &e) {
		e.deco = append(e.deco, caller)
		return e
	}
	return Error{message: err.Error(), deco: []string{caller}, critical: true, cause: err}
}

//Error is the general structure for DCD container errors.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
	cause    error
}

func newError(message, filename, caller string, cause error) Error {
	return Error{message: message, filename: filename, deco: []string{caller}, critical: true, cause: cause}
}

func (err Error) Error() string {
	if err.cause != nil && err.cause.Error() != err.message {
		return fmt.Sprintf("dcd file %s error: %s: %s", err.filename, err.message, err.cause.Error())
	}
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error, and returns the list of callers.
func (err Error) Decorate(deco string) []string {
	//The receiver is a copy, but deco shares the backing array, so this works
	//as long as there is capacity, which is the common case.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file (always "dcd") associated to the error
func (err Error) Format() string { return "dcd" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

//Unwrap gives access to the underlying I/O or format error.
func (err Error) Unwrap() error { return err.cause }

//Kinds of container errors. Match them with errors.Is.
var (
	ErrFormat      = errors.New("wrong format in DCD file")
	ErrUnsupported = errors.New("unsupported DCD feature")
	ErrNotReadable = errors.New("DCD not open for reading")
	ErrNotWritable = errors.New("DCD not open for writing")
	ErrOutOfRange  = errors.New("frame index out of range")
	ErrAtomIndex   = errors.New("atom index out of range")
	ErrBadOrder    = errors.New("invalid axis order")
)

const (
	SecurityCheckFailed = "Failed security check"
	NotEnoughSpace      = "Not enough space in passed blocks"
	UnableToOpen        = "Unable to open file"
)
