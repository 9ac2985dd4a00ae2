/*
 * interfaces.go, part of godcd
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

import "gonum.org/v1/gonum/mat"

//Traj is a trajectory that can be read sequentially into plain matrices.
//Reader implements it.
type Traj interface {
	//Is the trajectory ready to be read?
	Readable() bool
	//reads the next frame into output, or discards it if output is nil.
	//It can also fill the (optional) box with the unit cell.
	NextCoords(output *mat.Dense, box ...[]float64) error
	//Returns the number of atoms per frame
	Len() int
}

//ConcTraj is a trajectory that can be decoded concurrently.
type ConcTraj interface {
	Readable() bool
	NextConc(frames []*Timestep) ([]chan *Timestep, error)
	Len() int
}

//TrajWriter is a trajectory that frames can be appended to. Writer implements it.
type TrajWriter interface {
	WNext(towrite *mat.Dense, box ...[]float64) error
	Len() int
	Close() error
}

//Decorator is implemented by every error returned by this package. The
//Decorate method allows to add and retrieve info from the error, without
//changing its type. If given an empty string, it returns the current
//decorations.
type Decorator interface {
	Error() string
	Decorate(string) []string
}

//TrajError is the interface for errors in trajectories.
type TrajError interface {
	Decorator
	Critical() bool
	FileName() string
	Format() string
}

//LastFrameError is implemented only by the harmless error returned at the end
//of a trajectory, so it can be filtered in a type switch.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination()
}

var (
	_ Traj           = (*Reader)(nil)
	_ ConcTraj       = (*Reader)(nil)
	_ TrajWriter     = (*Writer)(nil)
	_ TrajError      = Error{}
	_ LastFrameError = lastFrameError{}
)
