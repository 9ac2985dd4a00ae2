/*
 * cellplot_test.go, part of godcd
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

package cellplot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/godcd/dcd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

//breathing writes a trajectory where the box grows by 1 Angstrom per frame.
func breathing(Te *testing.T, frames int) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), "breathing.dcd")
	err := dcd.WithWriter(path, 2, func(W *dcd.Writer) error {
		for i := 0; i < frames; i++ {
			l := float64(10 + i)
			if err := W.WNext(mat.NewDense(2, 3, nil), []float64{l, l, 2 * l, 90, 90, 90}); err != nil {
				return err
			}
		}
		return nil
	}, dcd.WithTimestep(0.5))
	require.NoError(Te, err)
	return path
}

func TestSeries(Te *testing.T) {
	R, err := dcd.Open(breathing(Te, 4))
	require.NoError(Te, err)
	defer R.Close()
	lengths, volume, err := Series(R)
	require.NoError(Te, err)
	require.Len(Te, volume, 4)
	for i := 0; i < 4; i++ {
		l := float64(10 + i)
		assert.InDelta(Te, 0.5*float64(i), lengths[0][i].X, 1e-5)
		assert.InDelta(Te, l, lengths[0][i].Y, 1e-5)
		assert.InDelta(Te, l, lengths[1][i].Y, 1e-5)
		assert.InDelta(Te, 2*l, lengths[2][i].Y, 1e-5)
		assert.InDelta(Te, 2*l*l*l, volume[i].Y, 1e-3)
	}
	assert.Equal(Te, -1, R.Frame())
}

func TestDimensions(Te *testing.T) {
	R, err := dcd.Open(breathing(Te, 5))
	require.NoError(Te, err)
	defer R.Close()
	name := filepath.Join(Te.TempDir(), "cell")
	require.NoError(Te, Dimensions(R, "Breathing box", name))
	require.NoError(Te, Volume(R, "Breathing box", name+"vol"))
	for _, f := range []string{name + ".png", name + "vol.png"} {
		info, err := os.Stat(f)
		require.NoError(Te, err)
		assert.NotZero(Te, info.Size())
	}
	ts, err := R.Next()
	require.NoError(Te, err)
	assert.Equal(Te, 0, ts.Frame)
}
