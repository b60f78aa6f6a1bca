/*
 * histogram.go, part of trpprep
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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram is the distribution of the values of one collector over a job.
type Histogram struct {
	Name     string
	Dividers []float64 //bin i goes from Dividers[i] to Dividers[i+1]
	Counts   []float64
	Total    int //values in the histogram, NaNs are not counted.
}

// NewHistogram returns a histogram of values with bins bins of the same width, from the
// smallest to the largest value. The largest value falls in the last bin.
func NewHistogram(name string, values []float64, bins int) (*Histogram, error) {
	if bins < 1 {
		return nil, fmt.Errorf("analysis: histogram %s: need at least one bin, got %d", name, bins)
	}
	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("analysis: histogram %s: no data", name)
	}
	sort.Float64s(x)
	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	H := &Histogram{Name: name, Dividers: floats.Span(make([]float64, bins+1), lo, hi), Total: len(x)}
	H.Dividers[bins] = math.Nextafter(H.Dividers[bins], math.Inf(1))
	H.Counts = stat.Histogram(nil, H.Dividers, x, nil)
	return H, nil
}

// Fractions returns the count of each bin divided by the total.
func (H *Histogram) Fractions() []float64 {
	ret := make([]float64, len(H.Counts))
	floats.ScaleTo(ret, 1/float64(H.Total), H.Counts)
	return ret
}

// Write writes the histogram as a commented header followed by one
// tab-separated "low high fraction" line per bin.
func (H *Histogram) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s, %d frames\n", H.Name, H.Total)
	for i, f := range H.Fractions() {
		fmt.Fprintf(bw, "%.6f\t%.6f\t%.6f\n", H.Dividers[i], H.Dividers[i+1], f)
	}
	return bw.Flush()
}

// HistogramName returns the name of the histogram file for the data file name: the
// same, with a hist extension.
func HistogramName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".hist"
}

// WriteHistograms writes the histogram of each column of ds to filename, with a blank
// line between histograms.
func WriteHistograms(ds *DataSet, bins int, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	for i, name := range ds.Names {
		H, err := NewHistogram(name, ds.Column(name), bins)
		if err == nil && i > 0 {
			_, err = io.WriteString(f, "\n")
		}
		if err == nil {
			err = H.Write(f)
		}
		if err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
