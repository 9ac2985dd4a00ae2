/*
 * scope.go, part of godcd
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

//WithReader opens name, passes the Reader to f and closes it when f returns,
//also if f panics. An error from f takes precedence over one from Close.
func WithReader(name string, f func(*Reader) error, opts ...ReaderOption) (err error) {
	R, err := Open(name, opts...)
	if err != nil {
		return errDecorate(err, "WithReader")
	}
	defer func() {
		if cerr := R.Close(); err == nil {
			err = errDecorate(cerr, "WithReader")
		}
	}()
	return f(R)
}

//WithWriter creates name for natoms atoms, passes the Writer to f and closes
//it when f returns, also if f panics, so the frame count in the header is
//always updated.
func WithWriter(name string, natoms int, f func(*Writer) error, opts ...WriterOption) (err error) {
	W, err := Create(name, natoms, opts...)
	if err != nil {
		return errDecorate(err, "WithWriter")
	}
	defer func() {
		if cerr := W.Close(); err == nil {
			err = errDecorate(cerr, "WithWriter")
		}
	}()
	return f(W)
}
