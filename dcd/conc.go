/*
 * conc.go, part of godcd
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
	"github.com/rmera/godcd/dcdfile"
)

//setConcBuffer makes sure there are at least batchsize raw frames available
//for NextConc.
func (R *Reader) setConcBuffer(batchsize int) {
	for len(R.concBuffer) < batchsize {
		R.concBuffer = append(R.concBuffer, dcdfile.NewFrame(R.natoms))
	}
}

/*NextConc reads as many frames as elements frames has. The frames
are read from the file one after the other, but decoded concurrently, each into the
corresponding element of frames, which is then sent through the channel
of the same index in the returned slice. A frame is read and discarded if the
corresponding element of frames is nil, and its channel is nil.
The state of the reader (current frame, Timestep) is updated to the last frame read.
All the channels must be received from before the next call to NextConc.
If the trajectory ends before all frames are read, the frames read so far are still
delivered, and the error satisfies errors.Is(err, ErrEndOfTrajectory).*/
func (R *Reader) NextConc(frames []*Timestep) ([]chan *Timestep, error) {
	if !R.readable {
		return nil, newError(ErrClosed, R.filename, "NextConc", "")
	}
	framechans := make([]chan *Timestep, len(frames))
	R.setConcBuffer(len(frames))
	f := R.lengthFactor()
	var last *dcdfile.Frame
	//R.ts only gets the positions of the last frame read.
	defer func() {
		if last != nil {
			fillPositions(R.ts, last, f)
		}
	}()
	for key := range frames {
		if R.frame == R.nframes-1 {
			return framechans, newlastFrameError(R.filename, "NextConc")
		}
		raw := R.concBuffer[key]
		if err := R.file.ReadFrame(raw); err != nil {
			return framechans, errDecorate(err, "NextConc")
		}
		R.frame++
		if err := R.frameMeta(raw, R.frame); err != nil {
			return framechans, errDecorate(err, "NextConc")
		}
		last = raw
		if frames[key] == nil {
			continue
		}
		framechans[key] = make(chan *Timestep, 1)
		meta := *R.ts
		meta.Positions = nil
		go func(meta Timestep, raw *dcdfile.Frame, keep *Timestep, pipe chan *Timestep) {
			keep.Frame, keep.Time, keep.DT = meta.Frame, meta.Time, meta.DT
			keep.Dimensions, keep.Convention, keep.Offset = meta.Dimensions, meta.Convention, meta.Offset
			fillPositions(keep, raw, f)
			pipe <- keep
		}(meta, raw, frames[key], framechans[key])
	}
	return framechans, nil
}
