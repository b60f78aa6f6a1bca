/*
 * analyze.go, part of trpprep
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
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	prep "github.com/rmera/trpprep"
	"github.com/rmera/trpprep/internal/ctxlog"
	"github.com/rmera/trpprep/traj/dcd"
	v3 "github.com/rmera/trpprep/v3"
)

// Job is one set of trajectories, read in order as a single one, and the file where its data
// set is written.
type Job struct {
	Name         string
	Trajectories []string
	Output       string
}

// NewCollectors returns a function that creates a fresh set of collectors, one per job, as
// collectors keep state.
type NewCollectors func() []Collector

// Run fills a data set with the values of the collectors for each frame of the
// trajectories of the job.
func (J Job) Run(ctx context.Context, top *prep.Topology, cols []Collector) (*DataSet, error) {
	log := ctxlog.FromContext(ctx)
	ds := &DataSet{}
	for _, c := range cols {
		if err := c.Setup(top); err != nil {
			return nil, err
		}
		ds.Names = append(ds.Names, c.Name())
	}
	coords := v3.Zeros(top.Len())
	for _, name := range J.Trajectories {
		traj, err := dcd.NewReader(name)
		if err != nil {
			return nil, err
		}
		if traj.Len() != top.Len() {
			traj.Close()
			return nil, fmt.Errorf("analysis: %s has %d atoms, the topology has %d: %w", name, traj.Len(), top.Len(), prep.ErrMismatch)
		}
		frames := 0
		for {
			if err := ctx.Err(); err != nil {
				traj.Close()
				return nil, err
			}
			err := traj.Next(coords)
			if dcd.IsLastFrame(err) {
				break
			}
			if err != nil {
				traj.Close()
				return nil, err
			}
			row := make([]float64, len(cols))
			for i, c := range cols {
				if row[i], err = c.Collect(coords); err != nil {
					traj.Close()
					return nil, err
				}
			}
			ds.Rows = append(ds.Rows, row)
			frames++
		}
		traj.Close()
		log.Debug("Read trajectory", "job", J.Name, "file", name, "frames", frames)
	}
	return ds, nil
}

// Options control what Analyze writes, and how many jobs it runs at a time.
type Options struct {
	Workers int  //jobs run at the same time, one per CPU if not positive.
	Plot    bool //write a PNG plot next to each data file.
	Bins    int  //if positive, write histograms with this many bins next to each data file.
}

// Analyze runs the jobs concurrently and writes each data set to the output of its job.
// The summary of each job is logged.
func Analyze(ctx context.Context, top *prep.Topology, newCols NewCollectors, jobs []Job, opts Options) error {
	log := ctxlog.FromContext(ctx)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		g.Go(func() error {
			ds, err := j.Run(ctx, top, newCols())
			if err != nil {
				return fmt.Errorf("job %s: %w", j.Name, err)
			}
			if err := ds.WriteFile(j.Output); err != nil {
				return fmt.Errorf("job %s: %w", j.Name, err)
			}
			for _, s := range Summarize(ds) {
				log.Info("Distance summary", "job", j.Name, "collector", s.Name, "frames", s.N,
					"mean", s.Mean, "std", s.Std, "min", s.Min, "max", s.Max)
			}
			if opts.Plot {
				if err := Plot(ds, j.Name, PlotName(j.Output)); err != nil {
					return fmt.Errorf("job %s: %w", j.Name, err)
				}
			}
			if opts.Bins > 0 {
				if err := WriteHistograms(ds, opts.Bins, HistogramName(j.Output)); err != nil {
					return fmt.Errorf("job %s: %w", j.Name, err)
				}
			}
			log.Info("Wrote data set", "job", j.Name, "file", j.Output, "frames", len(ds.Rows))
			return nil
		})
	}
	return g.Wait()
}

// PrefixPlaceholder is replaced by the job prefix in trajectory and output names.
const PrefixPlaceholder = "{prefix}"

// JobsFromPrefixes returns one job per prefix, with the trajectories and output obtained by
// replacing PrefixPlaceholder in the given patterns. Relative paths are taken from dir.
func JobsFromPrefixes(dir string, prefixes, trajectories []string, output string) []Job {
	path := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	jobs := make([]Job, 0, len(prefixes))
	for _, pre := range prefixes {
		j := Job{Name: pre, Output: path(strings.ReplaceAll(output, PrefixPlaceholder, pre))}
		for _, t := range trajectories {
			j.Trajectories = append(j.Trajectories, path(strings.ReplaceAll(t, PrefixPlaceholder, pre)))
		}
		jobs = append(jobs, j)
	}
	return jobs
}
