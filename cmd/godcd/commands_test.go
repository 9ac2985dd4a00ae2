/*
 * commands_test.go, part of godcd
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

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/godcd/dcd"
	"github.com/rmera/godcd/trajstat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

func sample(Te *testing.T) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), "sample.dcd")
	err := dcd.WithWriter(path, 3, func(W *dcd.Writer) error {
		for f := 0; f < 4; f++ {
			pos := mat.NewDense(3, 3, nil)
			for a := 0; a < 3; a++ {
				for c := 0; c < 3; c++ {
					pos.Set(a, c, float64(100*f+10*a+c))
				}
			}
			if err := W.WNext(pos, []float64{float64(10 + f), 20, 30, 90, 90, 90}); err != nil {
				return err
			}
		}
		return nil
	}, dcd.WithRemarks("cli test"))
	require.NoError(Te, err)
	return path
}

func run(Te *testing.T, args ...string) (string, error) {
	Te.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInfo(Te *testing.T) {
	path := sample(Te)
	out, err := run(Te, "info", path)
	require.NoError(Te, err)
	assert.Contains(Te, out, "3 atoms, 4 frames")
	assert.Contains(Te, out, "remarks: cli test")

	out, err = run(Te, "info", "--yaml", path)
	require.NoError(Te, err)
	var rep infoReport
	require.NoError(Te, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(Te, 3, rep.Atoms)
	assert.Equal(Te, 4, rep.Frames)
	assert.Equal(Te, "degree", rep.Convention)
	assert.InDelta(Te, 10, rep.Box[0], 1e-6)

	_, err = run(Te, "info")
	assert.Error(Te, err)
	_, err = run(Te, "info", filepath.Join(Te.TempDir(), "missing.dcd"))
	assert.Error(Te, err)
}

func TestConfig(Te *testing.T) {
	path := sample(Te)
	conf := filepath.Join(Te.TempDir(), "godcd.yaml")
	require.NoError(Te, os.WriteFile(conf, []byte("length: nm\ndt: 0.5\n"), 0o644))
	out, err := run(Te, "info", "--yaml", "--config", conf, path)
	require.NoError(Te, err)
	var rep infoReport
	require.NoError(Te, yaml.Unmarshal([]byte(out), &rep))
	assert.InDelta(Te, 1, rep.Box[0], 1e-6)
	assert.Equal(Te, 0.5, rep.DT)
	//flags win over the file.
	out, err = run(Te, "info", "--yaml", "--config", conf, "--no-convert", "--dt", "2", path)
	require.NoError(Te, err)
	require.NoError(Te, yaml.Unmarshal([]byte(out), &rep))
	assert.InDelta(Te, 10, rep.Box[0], 1e-6)
	assert.Equal(Te, 2.0, rep.DT)

	require.NoError(Te, os.WriteFile(conf, []byte("length: [nm"), 0o644))
	_, err = run(Te, "info", "--config", conf, path)
	assert.Error(Te, err)
}

func TestStats(Te *testing.T) {
	path := sample(Te)
	out, err := run(Te, "stats", "--yaml", path)
	require.NoError(Te, err)
	var S trajstat.Summary
	require.NoError(Te, yaml.Unmarshal([]byte(out), &S))
	assert.Equal(Te, 4, S.Frames)
	assert.InDelta(Te, 11.5, S.Mean[0], 1e-6)
	assert.InDelta(Te, 20, S.Mean[1], 1e-6)
	out, err = run(Te, "stats", path)
	require.NoError(Te, err)
	assert.Contains(Te, out, "4 frames")
}

func TestConvert(Te *testing.T) {
	path := sample(Te)
	target := filepath.Join(Te.TempDir(), "every2.dcd.zst")
	out, err := run(Te, "convert", "--step", "-2", "--remarks", "reversed", path, target)
	require.NoError(Te, err)
	assert.Contains(Te, out, "wrote 2 frames")
	R, err := dcd.Open(target)
	require.NoError(Te, err)
	defer R.Close()
	assert.Equal(Te, 2, R.NFrames())
	assert.InDelta(Te, 2.0, R.DT(), 1e-5)
	assert.Equal(Te, "reversed", R.Header().Remarks)
	assert.InDelta(Te, 13, R.Dimensions()[0], 1e-6)
	ts, err := R.Next()
	require.NoError(Te, err)
	assert.InDelta(Te, 11, ts.Dimensions[0], 1e-6)
	assert.Equal(Te, 110.0, ts.Positions.At(1, 0))

	_, err = run(Te, "convert", "--step", "0", path, target)
	assert.ErrorIs(Te, err, dcd.ErrZeroStep)
}

func TestExtract(Te *testing.T) {
	path := sample(Te)
	out, err := run(Te, "extract", "--atoms", "2,0", "--order", "fac", "--start", "1", "--stop", "3", path)
	require.NoError(Te, err)
	var S struct {
		Order string
		Shape [3]int
		Data  []float64
	}
	require.NoError(Te, json.Unmarshal([]byte(out), &S))
	assert.Equal(Te, "fac", S.Order)
	assert.Equal(Te, [3]int{2, 2, 3}, S.Shape)
	assert.Equal(Te, []float64{120, 121, 122, 100, 101, 102, 220, 221, 222, 200, 201, 202}, S.Data)

	file := filepath.Join(Te.TempDir(), "all.json")
	_, err = run(Te, "extract", "-o", file, path)
	require.NoError(Te, err)
	data, err := os.ReadFile(file)
	require.NoError(Te, err)
	require.NoError(Te, json.Unmarshal(data, &S))
	assert.Equal(Te, [3]int{3, 4, 3}, S.Shape)

	_, err = run(Te, "extract", "--order", "xyz", path)
	assert.ErrorIs(Te, err, dcd.ErrBadOrder)
	_, err = run(Te, "extract", "--atoms", "7", path)
	assert.ErrorIs(Te, err, dcd.ErrAtomOutOfRange)
}

func TestPlot(Te *testing.T) {
	path := sample(Te)
	name := filepath.Join(Te.TempDir(), "box")
	out, err := run(Te, "plot", "-o", name, path)
	require.NoError(Te, err)
	assert.Contains(Te, out, name+".png")
	_, err = os.Stat(name + ".png")
	assert.NoError(Te, err)
	_, err = run(Te, "plot", "--volume", "-o", name+"v", "--title", "volume", path)
	require.NoError(Te, err)
	_, err = os.Stat(name + "v.png")
	assert.NoError(Te, err)
}
