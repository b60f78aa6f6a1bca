/*
 * summary.go, part of trpprep
 *
 * Copyright 2024 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
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

package analysis

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Stats summarizes one column of a data set.
type Stats struct {
	Name      string
	N         int
	Mean, Std float64
	Min, Max  float64
}

// Summarize returns the statistics of each column of ds. Std is the sample standard
// deviation, NaN for fewer than two frames. All values are NaN for an empty data set.
func Summarize(ds *DataSet) []Stats {
	ret := make([]Stats, len(ds.Names))
	for i, name := range ds.Names {
		col := ds.Column(name)
		s := Stats{Name: name, N: len(col), Mean: math.NaN(), Std: math.NaN(), Min: math.NaN(), Max: math.NaN()}
		if len(col) > 0 {
			s.Mean = stat.Mean(col, nil)
			s.Min = floats.Min(col)
			s.Max = floats.Max(col)
		}
		if len(col) > 1 {
			s.Std = stat.StdDev(col, nil)
		}
		ret[i] = s
	}
	return ret
}

// PlotName returns the name of the plot for the data file name: the same, with a png extension.
func PlotName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// Plot writes a PNG plot with one line per column of ds, against the frame number.
func Plot(ds *DataSet, title, filename string) error {
	if len(ds.Rows) == 0 {
		return fmt.Errorf("analysis: nothing to plot for %s", title)
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Distance (Å)"
	p.Add(plotter.NewGrid())
	for i, name := range ds.Names {
		pts := make(plotter.XYs, len(ds.Rows))
		for j, r := range ds.Rows {
			pts[j].X = float64(j)
			pts[j].Y = r[i]
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(name, l)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
