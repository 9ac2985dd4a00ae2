/*
 * cellplot.go, part of godcd
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

//Package cellplot plots how the unit cell of a DCD trajectory changes over time.
package cellplot

import (
	"errors"
	"fmt"

	"github.com/rmera/godcd/cell"
	"github.com/rmera/godcd/dcd"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

//Series returns the box lengths A, B and C, and the volume of the cell,
//against time in ps, for every frame in the trajectory. The reader is
//rewound before and after.
func Series(r *dcd.Reader) (lengths [3]plotter.XYs, volume plotter.XYs, err error) {
	if err = r.Reopen(); err != nil {
		return
	}
	for i := range lengths {
		lengths[i] = make(plotter.XYs, 0, r.NFrames())
	}
	volume = make(plotter.XYs, 0, r.NFrames())
	ts := dcd.NewTimestep(r.Len())
	for {
		err = r.NextInto(ts)
		if errors.Is(err, dcd.ErrEndOfTrajectory) {
			break
		} else if err != nil {
			return
		}
		for i, l := range ts.Dimensions.Lengths() {
			lengths[i] = append(lengths[i], plotter.XY{X: ts.Time, Y: l})
		}
		volume = append(volume, plotter.XY{X: ts.Time, Y: cell.Volume(ts.Dimensions)})
	}
	err = r.Reopen()
	return
}

func basicPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Time (ps)"
	p.Y.Label.Text = "Length"
	p.Add(plotter.NewGrid())
	return p
}

/*Dimensions produces a png plot, plotname.png, of the box lengths of the unit cell of
each frame in r, against time. The reader is left before the first frame.*/
func Dimensions(r *dcd.Reader, title, plotname string) error {
	lengths, _, err := Series(r)
	if err != nil {
		return fmt.Errorf("cellplot: %w", err)
	}
	p := basicPlot(title)
	for i, name := range []string{"A", "B", "C"} {
		l, err := plotter.NewLine(lengths[i])
		if err != nil {
			return fmt.Errorf("cellplot: %w", err)
		}
		l.LineStyle.Color = plotutil.Color(i)
		l.LineStyle.Dashes = plotutil.Dashes(i)
		p.Add(l)
		p.Legend.Add(name, l)
	}
	filename := fmt.Sprintf("%s.png", plotname)
	if err := p.Save(4*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("cellplot: %w", err)
	}
	return nil
}

//Volume is like Dimensions, but plots the volume of the cell.
func Volume(r *dcd.Reader, title, plotname string) error {
	_, volume, err := Series(r)
	if err != nil {
		return fmt.Errorf("cellplot: %w", err)
	}
	p := basicPlot(title)
	p.Y.Label.Text = "Volume"
	l, err := plotter.NewLine(volume)
	if err != nil {
		return fmt.Errorf("cellplot: %w", err)
	}
	l.LineStyle.Color = plotutil.Color(0)
	p.Add(l)
	filename := fmt.Sprintf("%s.png", plotname)
	if err := p.Save(4*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("cellplot: %w", err)
	}
	return nil
}
