/*
 * timecorr.go, part of godcd
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

//Package trajstat computes statistics of per-frame properties over DCD trajectories:
//summaries, histograms and time correlation functions.
package trajstat

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/rmera/godcd/cell"
	"github.com/rmera/godcd/dcd"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

//FrameFunc obtains one number from a frame.
type FrameFunc func(ts *dcd.Timestep) float64

//BoxLength returns a FrameFunc for the i-th box length (0 for A, 1 for B, 2 for C).
func BoxLength(i int) FrameFunc {
	return func(ts *dcd.Timestep) float64 {
		return ts.Dimensions[i]
	}
}

//BoxVolume is a FrameFunc for the volume of the unit cell.
func BoxVolume(ts *dcd.Timestep) float64 {
	return cell.Volume(ts.Dimensions)
}

//Distance returns a FrameFunc for the distance between atoms i and j.
func Distance(i, j int) FrameFunc {
	return func(ts *dcd.Timestep) float64 {
		a := r3.Vec{X: ts.Positions.At(i, 0), Y: ts.Positions.At(i, 1), Z: ts.Positions.At(i, 2)}
		b := r3.Vec{X: ts.Positions.At(j, 0), Y: ts.Positions.At(j, 1), Z: ts.Positions.At(j, 2)}
		return r3.Norm(r3.Sub(a, b))
	}
}

//MapFrames applies f to every frame of r, from the first one, and appends the
//results to c, which is returned. The reader is rewound afterwards.
func MapFrames(r *dcd.Reader, f FrameFunc, c []float64) ([]float64, error) {
	if err := r.Reopen(); err != nil {
		return c, err
	}
	ts := dcd.NewTimestep(r.Len())
	for {
		err := r.NextInto(ts)
		if errors.Is(err, dcd.ErrEndOfTrajectory) {
			break
		} else if err != nil {
			return c, err
		}
		c = append(c, f(ts))
	}
	return c, r.Reopen()
}

//Summary holds the mean and standard deviation of the box lengths and volume
//over a trajectory. Index 0 to 2 are A, B and C, 3 is the volume.
type Summary struct {
	Frames int
	Mean   [4]float64
	StdDev [4]float64
}

func (S Summary) String() string {
	return fmt.Sprintf("%d frames. A: %.3f±%.3f B: %.3f±%.3f C: %.3f±%.3f V: %.3f±%.3f", S.Frames,
		S.Mean[0], S.StdDev[0], S.Mean[1], S.StdDev[1], S.Mean[2], S.StdDev[2], S.Mean[3], S.StdDev[3])
}

//Summarize reads the whole trajectory and returns the statistics of its unit cell.
func Summarize(r *dcd.Reader) (Summary, error) {
	var S Summary
	funcs := []FrameFunc{BoxLength(0), BoxLength(1), BoxLength(2), BoxVolume}
	for i, f := range funcs {
		data, err := MapFrames(r, f, make([]float64, 0, r.NFrames()))
		if err != nil {
			return S, fmt.Errorf("trajstat: %w", err)
		}
		S.Frames = len(data)
		if len(data) == 0 {
			continue
		}
		S.Mean[i], S.StdDev[i] = stat.MeanStdDev(data, nil)
	}
	return S, nil
}

//Correlation returns the cross-correlation function for the values produced
//by f1 on r1 and f2 on r2. If r1 and r2 are the same trajectory, and f1 and f2 the
//same function, the result is the autocorrelation function, and auto can be set
//to true to save reading the trajectory twice.
func Correlation(r1, r2 *dcd.Reader, f1, f2 FrameFunc, auto bool) ([]float64, error) {
	c1, err := MapFrames(r1, f1, make([]float64, 0, r1.NFrames()))
	if err != nil {
		return nil, fmt.Errorf("trajstat: %w", err)
	}
	var c2 []float64
	if auto {
		c2 = make([]float64, len(c1))
		copy(c2, c1)
	} else {
		c2, err = MapFrames(r2, f2, make([]float64, 0, len(c1)))
		if err != nil {
			return nil, fmt.Errorf("trajstat: %w", err)
		}
		if len(c2) != len(c1) {
			return nil, fmt.Errorf("trajstat: trajectories have %d and %d frames", len(c1), len(c2))
		}
	}
	return CrossCorrMem(c1, c2, nil, nil), nil
}

//CrossCorrMem returns the normalized cross-correlation of c1 and c2, which must
//have the same length, computed with FFT. The first len(c1) elements are the
//positive lags, starting from 0, the rest, the negative ones.
//c1pad and c2pad are work space, which is allocated if they don't have twice
//the length of c1. The result is appended to dst, if given.
func CrossCorrMem(c1, c2 []float64, c1pad, c2pad []complex128, dst ...[]float64) []float64 {
	if len(c1) != len(c2) {
		panic(fmt.Sprintf("trajstat: Both series should have the same len %d, %d", len(c1), len(c2)))
	}
	var ret []float64
	if len(dst) == 0 {
		ret = make([]float64, 0, 2*len(c1))
	} else {
		ret = dst[0][:0]
	}
	if len(c1) == 0 {
		return ret
	}
	c1mean, c1std := stat.MeanStdDev(c1, nil)
	c2mean, c2std := stat.MeanStdDev(c2, nil)
	if len(c1pad) != 2*len(c1) {
		c1pad = make([]complex128, 2*len(c1))
	}
	if len(c2pad) != 2*len(c2) {
		c2pad = make([]complex128, 2*len(c2))
	}
	for i := range c1pad {
		c1pad[i], c2pad[i] = 0, 0
	}
	for i, v := range c1 {
		c1pad[i] = complex(v-c1mean, 0)
		c2pad[i] = complex(c2[i]-c2mean, 0)
	}
	f := fourier.NewCmplxFFT(len(c1pad))
	f.Coefficients(c1pad, c1pad)
	f.Coefficients(c2pad, c2pad)
	cmplxMulConj(c1pad, c2pad)
	f.Sequence(c1pad, c1pad)
	//the inverse transform is not normalized.
	norm := float64(len(c1pad)) * c1std * c2std * float64(len(c1))
	for _, v := range c1pad {
		ret = append(ret, real(v)/norm)
	}
	return ret
}

func cmplxMulConj(dst, b []complex128) {
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}
