/*
 * dataset.go, part of trpprep
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
	"os"
	"path/filepath"
	"strings"
)

// DataSet has one column per collector and one row per frame.
type DataSet struct {
	Names []string
	Rows  [][]float64
}

// Column returns the values of the column name, or nil if there is no such column.
func (D *DataSet) Column(name string) []float64 {
	col := -1
	for i, n := range D.Names {
		if n == name {
			col = i
		}
	}
	if col < 0 {
		return nil
	}
	ret := make([]float64, len(D.Rows))
	for i, r := range D.Rows {
		ret[i] = r[col]
	}
	return ret
}

// Write writes a header line with the column names and a line per frame, numbered from 0,
// with tab-separated values.
func (D *DataSet) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# frame\t%s\n", strings.Join(D.Names, "\t"))
	for i, r := range D.Rows {
		fmt.Fprintf(bw, "%d", i)
		for _, v := range r {
			fmt.Fprintf(bw, "\t%.6f", v)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes the data set to the file name, creating its directory if needed.
func (D *DataSet) WriteFile(name string) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := D.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
