/*
 * reader_test.go, part of godcd
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
	"math"
	"path/filepath"
	"testing"

	"github.com/rmera/godcd/cell"
	"github.com/rmera/godcd/dcdfile"
	"github.com/rmera/godcd/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

//testCoords returns coordinates that encode frame, atom and axis.
func testCoords(frame, natoms int) *mat.Dense {
	m := mat.NewDense(natoms, 3, nil)
	for a := 0; a < natoms; a++ {
		for c := 0; c < 3; c++ {
			m.Set(a, c, float64(100*frame+10*a+c))
		}
	}
	return m
}

func testBox(frame int) []float64 {
	return []float64{float64(10 + frame), 20, 30, 90, 90, 90}
}

//writeTraj writes frames frames of natoms atoms made with testCoords and
//testBox, and returns the path to the file.
func writeTraj(Te *testing.T, name string, natoms, frames int, opts ...WriterOption) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), name)
	W, err := Create(path, natoms, opts...)
	require.NoError(Te, err)
	for i := 0; i < frames; i++ {
		require.NoError(Te, W.WNext(testCoords(i, natoms), testBox(i)))
	}
	require.NoError(Te, W.Close())
	return path
}

func checkTS(Te *testing.T, ts *Timestep, frame, natoms int) {
	Te.Helper()
	assert.Equal(Te, frame, ts.Frame)
	require.Equal(Te, natoms, ts.Len())
	assert.True(Te, mat.Equal(testCoords(frame, natoms), ts.Positions), "frame %d", frame)
	assert.InDeltaSlice(Te, testBox(frame), ts.Dimensions[:], 1e-5)
}

func TestConcreteScenario(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "scenario.dcd")
	W, err := Create(path, 3, WithNSavc(1), WithTimestep(0.002))
	require.NoError(Te, err)
	pos := mat.NewDense(3, 3, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0})
	ts := NewTimestep(3)
	ts.Positions = pos
	ts.Dimensions = cell.Box{10, 10, 10, 90, 90, 90}
	require.NoError(Te, W.WriteNext(ts))
	require.NoError(Te, W.WriteNext(ts))
	require.NoError(Te, W.Close())

	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	assert.InDelta(Te, 0.002, R.DT(), 1e-6)
	assert.Equal(Te, 2, R.NFrames())
	assert.Equal(Te, 3, R.Len())
	assert.Equal(Te, 0, R.Frame())
	assert.Equal(Te, cell.DegreeAngles, R.Timestep().Convention)
	f1, err := R.ReadFrame(1)
	require.NoError(Te, err)
	assert.Equal(Te, 1, f1.Frame)
	assert.InDelta(Te, 0.002, f1.Time, 1e-6)
	assert.True(Te, mat.Equal(pos, f1.Positions))
	assert.InDeltaSlice(Te, []float64{10, 10, 10, 90, 90, 90}, f1.Dimensions[:], 1e-6)
}

func TestOpen(Te *testing.T) {
	path := writeTraj(Te, "open.dcd", 4, 3)
	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	assert.Equal(Te, 0, R.Frame())
	checkTS(Te, R.Timestep(), 0, 4)
	d := R.Dimensions()
	assert.InDeltaSlice(Te, testBox(0), d[:], 1e-5)
	//the first Next gives the second frame.
	ts, err := R.Next()
	require.NoError(Te, err)
	checkTS(Te, ts, 1, 4)
	assert.InDelta(Te, 1.0, ts.Time, 1e-5) //1 ps is the default time step
	assert.Equal(Te, path, R.Filename())
	assert.Equal(Te, 4, R.Header().Atoms)
}

func TestSequentialAndRandomAccess(Te *testing.T) {
	const natoms, frames = 5, 6
	path := writeTraj(Te, "access.dcd", natoms, frames)
	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	require.NoError(Te, R.Reopen())
	assert.Equal(Te, -1, R.Frame())
	var seq []*Timestep
	for {
		ts, err := R.Next()
		if errors.Is(err, ErrEndOfTrajectory) {
			break
		}
		require.NoError(Te, err)
		seq = append(seq, ts)
	}
	require.Len(Te, seq, frames)
	for i, s := range seq {
		checkTS(Te, s, i, natoms)
	}
	for _, i := range []int{3, 0, 5, 2} {
		ts, err := R.ReadFrame(i)
		require.NoError(Te, err)
		assert.Equal(Te, seq[i].Frame, ts.Frame)
		assert.Equal(Te, seq[i].Time, ts.Time)
		assert.Equal(Te, seq[i].Offset, ts.Offset)
		assert.Equal(Te, seq[i].Dimensions, ts.Dimensions)
		assert.True(Te, mat.Equal(seq[i].Positions, ts.Positions))
		require.NoError(Te, R.Seek(i))
		assert.Equal(Te, i-1, R.Frame())
		ts2 := NewTimestep(natoms)
		require.NoError(Te, R.NextInto(ts2))
		assert.True(Te, mat.Equal(seq[i].Positions, ts2.Positions))
		assert.Equal(Te, i, ts2.Frame)
	}
	ts, err := R.ReadFrame(-1)
	require.NoError(Te, err)
	assert.Equal(Te, frames-1, ts.Frame)
}

func TestEndOfTrajectory(Te *testing.T) {
	path := writeTraj(Te, "end.dcd", 2, 3)
	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	require.NoError(Te, R.Seek(2))
	_, err = R.Next()
	require.NoError(Te, err)
	_, err = R.Next()
	require.Error(Te, err)
	assert.ErrorIs(Te, err, ErrEndOfTrajectory)
	last, ok := err.(LastFrameError)
	require.True(Te, ok)
	assert.False(Te, last.Critical())
	assert.Equal(Te, path, last.FileName())
	assert.Equal(Te, []string{"next", "Next"}, last.Decorate(""))
	//state is unchanged.
	assert.Equal(Te, 2, R.Frame())
	checkTS(Te, R.Timestep(), 2, 2)
	//real errors are not mistaken for the end of the trajectory.
	R.Close()
	_, err = R.Next()
	_, ok = err.(LastFrameError)
	assert.False(Te, ok)
	terr, ok := err.(TrajError)
	require.True(Te, ok)
	assert.True(Te, terr.Critical())
	assert.Equal(Te, "dcd", terr.Format())
}

func TestSeekOutOfRange(Te *testing.T) {
	path := writeTraj(Te, "seek.dcd", 2, 3)
	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	for _, i := range []int{3, 10, -4} {
		err := R.Seek(i)
		assert.ErrorIs(Te, err, ErrFrameOutOfRange, "frame %d", i)
		_, err = R.ReadFrame(i)
		assert.ErrorIs(Te, err, ErrFrameOutOfRange, "frame %d", i)
	}
}

func TestReopen(Te *testing.T) {
	path := writeTraj(Te, "reopen.dcd", 3, 4)
	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	for err == nil {
		_, err = R.Next()
	}
	assert.ErrorIs(Te, err, ErrEndOfTrajectory)
	require.NoError(Te, R.Reopen())
	assert.True(Te, R.Readable())
	ts, err := R.Next()
	require.NoError(Te, err)
	checkTS(Te, ts, 0, 3)
}

func TestSingleFrame(Te *testing.T) {
	path := writeTraj(Te, "single.dcd", 3, 1)
	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	assert.Equal(Te, 1, R.NFrames())
	assert.Equal(Te, 0, R.Frame())
	_, err = R.Next()
	assert.ErrorIs(Te, err, ErrEndOfTrajectory)
	ts, err := R.ReadFrame(0)
	require.NoError(Te, err)
	checkTS(Te, ts, 0, 3)
	assert.ErrorIs(Te, R.Seek(1), ErrFrameOutOfRange)
}

func TestEmptyTrajectory(Te *testing.T) {
	path := writeTraj(Te, "empty.dcd", 3, 0)
	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	assert.Equal(Te, 0, R.NFrames())
	assert.Equal(Te, -1, R.Frame())
	_, err = R.Next()
	assert.ErrorIs(Te, err, ErrEndOfTrajectory)
}

func TestClosed(Te *testing.T) {
	path := writeTraj(Te, "closed.dcd", 2, 2)
	R, err := Open(path)
	require.NoError(Te, err)
	require.NoError(Te, R.Close())
	require.NoError(Te, R.Close())
	assert.False(Te, R.Readable())
	_, err = R.Next()
	assert.ErrorIs(Te, err, ErrClosed)
	assert.ErrorIs(Te, R.Seek(0), ErrClosed)
	_, err = R.Timeseries(nil, AllFrames(), AFC)
	assert.ErrorIs(Te, err, ErrClosed)
	//the last frame read is still there.
	checkTS(Te, R.Timestep(), 0, 2)
}

func TestUnitConversion(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "nm.dcd")
	pos := mat.NewDense(2, 3, []float64{1, 2, 3, 0.5, 0.25, 0})
	err := WithWriter(path, 2, func(W *Writer) error {
		return W.WNext(pos, []float64{3, 4, 5, 90, 90, 120})
	}, WriteLengthUnit(units.Nanometer))
	require.NoError(Te, err)

	//Angstrom by default.
	R, err := Open(path)
	require.NoError(Te, err)
	ang := mat.NewDense(2, 3, nil)
	ang.Scale(10, pos)
	assert.True(Te, mat.EqualApprox(ang, R.Timestep().Positions, 1e-5))
	d := R.Dimensions()
	assert.InDeltaSlice(Te, []float64{30, 40, 50, 90, 90, 120}, d[:], 1e-4)
	require.NoError(Te, R.Close())

	err = WithReader(path, func(R *Reader) error {
		assert.True(Te, mat.EqualApprox(pos, R.Timestep().Positions, 1e-6))
		d := R.Dimensions()
		assert.InDeltaSlice(Te, []float64{3, 4, 5, 90, 90, 120}, d[:], 1e-5)
		return nil
	}, WithLengthUnit(units.Nanometer))
	require.NoError(Te, err)

	err = WithReader(path, func(R *Reader) error {
		assert.True(Te, mat.EqualApprox(ang, R.Timestep().Positions, 1e-5))
		return nil
	}, WithLengthUnit(units.Nanometer), WithoutUnitConversion())
	require.NoError(Te, err)

	_, err = Open(path, WithLengthUnit("furlong"))
	assert.Error(Te, err)
}

func TestDTOverride(Te *testing.T) {
	path := writeTraj(Te, "dt.dcd", 2, 3, WithTimestep(0.5), WithNSavc(4))
	R, err := Open(path)
	require.NoError(Te, err)
	assert.InDelta(Te, 2.0, R.DT(), 1e-5)
	require.NoError(Te, R.Close())
	R, err = Open(path, WithDT(7))
	require.NoError(Te, err)
	defer R.Close()
	assert.Equal(Te, 7.0, R.DT())
	ts, err := R.ReadFrame(2)
	require.NoError(Te, err)
	assert.Equal(Te, 14.0, ts.Time)
	assert.Equal(Te, 7.0, ts.DT)
}

func TestNextCoords(Te *testing.T) {
	path := writeTraj(Te, "coords.dcd", 3, 3)
	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	coords := mat.NewDense(3, 3, nil)
	box := make([]float64, 9)
	require.NoError(Te, R.NextCoords(coords, box))
	assert.True(Te, mat.Equal(testCoords(1, 3), coords))
	assert.InDeltaSlice(Te, []float64{11, 0, 0, 0, 20, 0, 0, 0, 30}, box, 1e-4)
	box = make([]float64, 6)
	require.NoError(Te, R.NextCoords(nil, box))
	assert.InDeltaSlice(Te, testBox(2), box, 1e-5)
	assert.ErrorIs(Te, R.NextCoords(coords), ErrEndOfTrajectory)
	require.NoError(Te, R.Seek(0))
	assert.ErrorIs(Te, R.NextCoords(mat.NewDense(2, 3, nil)), ErrAtomCount)
}

func TestNextConc(Te *testing.T) {
	const natoms = 4
	path := writeTraj(Te, "conc.dcd", natoms, 5)
	R, err := Open(path)
	require.NoError(Te, err)
	defer R.Close()
	require.NoError(Te, R.Reopen())
	frames := []*Timestep{NewTimestep(natoms), nil, NewTimestep(natoms)}
	chans, err := R.NextConc(frames)
	require.NoError(Te, err)
	require.Len(Te, chans, 3)
	assert.Nil(Te, chans[1])
	checkTS(Te, <-chans[0], 0, natoms)
	checkTS(Te, <-chans[2], 2, natoms)
	assert.Equal(Te, 2, R.Frame())
	checkTS(Te, R.Timestep(), 2, natoms)

	frames = []*Timestep{NewTimestep(natoms), NewTimestep(natoms), NewTimestep(natoms)}
	chans, err = R.NextConc(frames)
	assert.ErrorIs(Te, err, ErrEndOfTrajectory)
	checkTS(Te, <-chans[0], 3, natoms)
	checkTS(Te, <-chans[1], 4, natoms)
	assert.Nil(Te, chans[2])
}

func TestNextConcUnits(Te *testing.T) {
	const natoms = 3
	path := writeTraj(Te, "concnm.dcd", natoms, 3)
	R, err := Open(path, WithLengthUnit(units.Nanometer))
	require.NoError(Te, err)
	defer R.Close()
	require.NoError(Te, R.Reopen())
	frames := []*Timestep{NewTimestep(natoms), NewTimestep(natoms), nil}
	chans, err := R.NextConc(frames)
	require.NoError(Te, err)
	for i := 0; i < 2; i++ {
		ts := <-chans[i]
		nm := mat.NewDense(natoms, 3, nil)
		nm.Scale(0.1, testCoords(i, natoms))
		assert.True(Te, mat.EqualApprox(nm, ts.Positions, 1e-5), "frame %d", i)
		assert.InDelta(Te, 0.1*float64(10+i), ts.Dimensions[0], 1e-5)
		assert.InDelta(Te, 90.0, ts.Dimensions[3], 1e-9)
	}
	//the skipped frame is still the current one.
	assert.Equal(Te, 2, R.Frame())
	nm := mat.NewDense(natoms, 3, nil)
	nm.Scale(0.1, testCoords(2, natoms))
	assert.True(Te, mat.EqualApprox(nm, R.Timestep().Positions, 1e-5))
	assert.InDelta(Te, 1.2, R.Dimensions()[0], 1e-5)
}

//rawTraj writes a 2-atom trajectory with the given unit cell records, as
//they would be found on disk.
func rawTraj(Te *testing.T, name string, records ...[6]float64) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), name)
	D, err := dcdfile.Create(path, dcdfile.Header{Atoms: 2, NSavc: 1, Delta: 1})
	require.NoError(Te, err)
	for i, r := range records {
		F := dcdfile.NewFrame(2)
		for c := range F.Coords {
			F.Coords[c][0] = float32(10 * (i + 1))
			F.Coords[c][1] = float32(-10 * (i + 1))
		}
		F.UnitCell = r
		require.NoError(Te, D.WriteFrame(F))
	}
	require.NoError(Te, D.Close())
	return path
}

func TestConventions(Te *testing.T) {
	path := rawTraj(Te, "conventions.dcd",
		[6]float64{10, 0.5, 20, 0, 0, 30},
		[6]float64{10, -2, 12, 0, 0, 15},
		[6]float64{0, 0, -5, 0, 0, 3},
	)
	R, err := Open(path, WithLengthUnit(units.Nanometer))
	require.NoError(Te, err)
	defer R.Close()

	ts := R.Timestep()
	assert.Equal(Te, cell.CosineAngles, ts.Convention)
	assert.InDeltaSlice(Te, []float64{1, 2, 3, 90, 90, 60}, ts.Dimensions[:], 1e-9)
	assert.InDelta(Te, 1.0, ts.Positions.At(0, 0), 1e-6)

	ts, err = R.Next()
	require.NoError(Te, err)
	assert.Equal(Te, cell.MatrixVectors, ts.Convention)
	assert.InDelta(Te, 0.1*math.Sqrt(104), ts.Dimensions[0], 1e-9)
	assert.InDelta(Te, 0.1*math.Sqrt(148), ts.Dimensions[1], 1e-9)
	assert.InDelta(Te, 1.5, ts.Dimensions[2], 1e-9)
	gamma := math.Acos(-44/(math.Sqrt(104)*math.Sqrt(148))) * 180 / math.Pi
	assert.InDeltaSlice(Te, []float64{90, 90, gamma}, ts.Dimensions[3:], 1e-9)

	_, err = R.Next()
	assert.ErrorIs(Te, err, cell.ErrInvalidUnitCell)
	assert.False(Te, errors.Is(err, ErrEndOfTrajectory))

	ts, err = R.ReadFrame(0)
	require.NoError(Te, err)
	assert.Equal(Te, 0, ts.Frame)
	assert.InDelta(Te, 60.0, ts.Dimensions[5], 1e-9)
}

func TestReaderWriter(Te *testing.T) {
	path := writeTraj(Te, "source.dcd", 3, 4, WithTimestep(0.02))
	copyPath := filepath.Join(Te.TempDir(), "copy.dcd.gz")
	err := WithReader(path, func(R *Reader) error {
		W, err := R.Writer(copyPath)
		if err != nil {
			return err
		}
		defer W.Close()
		if err := R.Reopen(); err != nil {
			return err
		}
		ts := NewTimestep(R.Len())
		for {
			err := R.NextInto(ts)
			if errors.Is(err, ErrEndOfTrajectory) {
				return nil
			} else if err != nil {
				return err
			}
			if err := W.WriteNext(ts); err != nil {
				return err
			}
		}
	})
	require.NoError(Te, err)
	R, err := Open(copyPath)
	require.NoError(Te, err)
	defer R.Close()
	assert.Equal(Te, 4, R.NFrames())
	assert.InDelta(Te, 0.02, R.DT(), 1e-6)
	ts, err := R.ReadFrame(3)
	require.NoError(Te, err)
	checkTS(Te, ts, 3, 3)
}

func TestWithReaderError(Te *testing.T) {
	path := writeTraj(Te, "scope.dcd", 2, 2)
	boom := errors.New("boom")
	var kept *Reader
	err := WithReader(path, func(R *Reader) error {
		kept = R
		return boom
	})
	assert.ErrorIs(Te, err, boom)
	assert.False(Te, kept.Readable())
	err = WithReader(filepath.Join(Te.TempDir(), "nothere.dcd"), func(R *Reader) error { return nil })
	assert.Error(Te, err)
}
