/*
 * commands.go, part of godcd
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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rmera/godcd/cellplot"
	"github.com/rmera/godcd/dcd"
	"github.com/rmera/godcd/trajstat"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type rootFlags struct {
	config    string
	length    string
	dt        float64
	noConvert bool
}

//opener opens a trajectory with the options from the config file and flags.
type opener func(name string) (*dcd.Reader, error)

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:           "godcd",
		Short:         "Inspect, convert and analyze CHARMM/NAMD DCD trajectories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "YAML file with reading options (length, dt, no_convert)")
	pf.StringVar(&f.length, "length", "", "length unit for positions and box lengths (A, nm, pm, fm)")
	pf.Float64Var(&f.dt, "dt", 0, "time between frames in ps, overrides the one in the file")
	pf.BoolVar(&f.noConvert, "no-convert", false, "leave lengths in Angstrom")
	open := func(name string) (*dcd.Reader, error) {
		C, err := loadConfig(f.config)
		if err != nil {
			return nil, err
		}
		if f.length != "" {
			C.Length = f.length
		}
		if f.dt > 0 {
			C.DT = f.dt
		}
		C.NoConvert = C.NoConvert || f.noConvert
		return dcd.Open(name, C.ReaderOptions()...)
	}
	root.AddCommand(newInfoCmd(open), newStatsCmd(open), newConvertCmd(open), newExtractCmd(open), newPlotCmd(open))
	return root
}

//rangeFlags are the --start, --stop and --step flags. Those not given keep
//their defaults, as in a Python slice.
type rangeFlags struct {
	start, stop, step int
}

func (r *rangeFlags) add(cmd *cobra.Command) {
	cmd.Flags().IntVar(&r.start, "start", 0, "first frame (negative counts from the end)")
	cmd.Flags().IntVar(&r.stop, "stop", 0, "frame to stop before (negative counts from the end)")
	cmd.Flags().IntVar(&r.step, "step", 1, "step between frames, can be negative")
}

func (r *rangeFlags) Range(cmd *cobra.Command) dcd.Range {
	rng := dcd.AllFrames()
	if cmd.Flags().Changed("start") {
		rng = rng.From(r.start)
	}
	if cmd.Flags().Changed("stop") {
		rng = rng.To(r.stop)
	}
	if cmd.Flags().Changed("step") {
		rng = rng.Every(r.step)
	}
	return rng
}

type infoReport struct {
	File       string     `yaml:"file"`
	Atoms      int        `yaml:"atoms"`
	Frames     int        `yaml:"frames"`
	DT         float64    `yaml:"dt_ps"`
	NSavc      int        `yaml:"nsavc"`
	IStart     int        `yaml:"istart"`
	Remarks    string     `yaml:"remarks"`
	Convention string     `yaml:"cell_convention"`
	Box        [6]float64 `yaml:"first_box"`
}

func newInfoCmd(open opener) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Print the header and first unit cell of a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			R, err := open(args[0])
			if err != nil {
				return err
			}
			defer R.Close()
			H := R.Header()
			ts := R.Timestep()
			rep := infoReport{
				File:       args[0],
				Atoms:      R.Len(),
				Frames:     R.NFrames(),
				DT:         R.DT(),
				NSavc:      H.NSavc,
				IStart:     H.IStart,
				Remarks:    H.Remarks,
				Convention: ts.Convention.String(),
				Box:        ts.Dimensions,
			}
			out := cmd.OutOrStdout()
			if asYAML {
				return writeYAML(out, rep)
			}
			fmt.Fprintf(out, "%s: %d atoms, %d frames, dt %g ps\n", rep.File, rep.Atoms, rep.Frames, rep.DT)
			fmt.Fprintf(out, "nsavc %d, istart %d\n", rep.NSavc, rep.IStart)
			fmt.Fprintf(out, "remarks: %s\n", rep.Remarks)
			fmt.Fprintf(out, "first cell (%s): %v\n", rep.Convention, ts.Dimensions)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML")
	return cmd
}

func newStatsCmd(open opener) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Print the mean and standard deviation of the unit cell over a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			R, err := open(args[0])
			if err != nil {
				return err
			}
			defer R.Close()
			S, err := trajstat.Summarize(R)
			if err != nil {
				return err
			}
			if asYAML {
				return writeYAML(cmd.OutOrStdout(), S)
			}
			fmt.Fprintln(cmd.OutOrStdout(), S.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML")
	return cmd
}

func newConvertCmd(open opener) *cobra.Command {
	var rf rangeFlags
	var remarks string
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Copy frames of a trajectory to a new file, possibly compressed (.gz, .zst, .lzw)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			R, err := open(args[0])
			if err != nil {
				return err
			}
			defer R.Close()
			start, stop, step, err := rf.Range(cmd).Indices(R.NFrames())
			if err != nil {
				return err
			}
			opts := []dcd.WriterOption{dcd.WithTimestep(R.DT() * float64(abs(step)))}
			if remarks != "" {
				opts = append(opts, dcd.WithRemarks(remarks))
			}
			W, err := R.Writer(args[1], opts...)
			if err != nil {
				return err
			}
			defer W.Close()
			for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
				ts, err := R.ReadFrame(i)
				if err != nil {
					return err
				}
				if err := W.WriteNext(ts); err != nil {
					return err
				}
			}
			n := W.NFrames()
			if err := W.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", n, args[1])
			return nil
		},
	}
	rf.add(cmd)
	cmd.Flags().StringVar(&remarks, "remarks", "", "remarks for the new header")
	return cmd
}

func newExtractCmd(open opener) *cobra.Command {
	var rf rangeFlags
	var atoms []int
	var order, output string
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Write the coordinates of some atoms over some frames as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			R, err := open(args[0])
			if err != nil {
				return err
			}
			defer R.Close()
			var sel []int
			if cmd.Flags().Changed("atoms") {
				sel = atoms
				if sel == nil {
					sel = []int{}
				}
			}
			S, err := R.Timeseries(sel, rf.Range(cmd), dcd.Order(order))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return json.NewEncoder(out).Encode(S)
		},
	}
	rf.add(cmd)
	cmd.Flags().IntSliceVar(&atoms, "atoms", nil, "indices of the atoms to extract (all if not given)")
	cmd.Flags().StringVar(&order, "order", string(dcd.AFC), "axis order of the data: a permutation of afc")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if not given)")
	return cmd
}

func newPlotCmd(open opener) *cobra.Command {
	var title, name string
	var volume bool
	cmd := &cobra.Command{
		Use:   "plot FILE",
		Short: "Plot the box lengths (or volume) against time, to a png file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			R, err := open(args[0])
			if err != nil {
				return err
			}
			defer R.Close()
			if title == "" {
				title = args[0]
			}
			if volume {
				err = cellplot.Volume(R, title, name)
			} else {
				err = cellplot.Dimensions(R, title, name)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plot saved to %s.png\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "plot title (the file name if not given)")
	cmd.Flags().StringVarP(&name, "output", "o", "cell", "output file, without the .png extension")
	cmd.Flags().BoolVar(&volume, "volume", false, "plot the volume instead of the box lengths")
	return cmd
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
