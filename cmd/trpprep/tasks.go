/*
 * tasks.go, part of trpprep
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

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	prep "github.com/rmera/trpprep"
	"github.com/rmera/trpprep/analysis"
	"github.com/rmera/trpprep/build"
	"github.com/rmera/trpprep/constraints"
	"github.com/rmera/trpprep/fep"
	"github.com/rmera/trpprep/internal/config"
	"github.com/rmera/trpprep/internal/ctxlog"
	"github.com/rmera/trpprep/uniprot"
)

func newBuildCmd(a *app) *cobra.Command {
	def := config.Default().Build
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the channel model in a membrane, solvated and ionized",
		Long: `Build the channel model in a membrane, solvated and ionized.

The template is centered and rotated, each chain is split in segments and
capped, and two sodium ions are placed in the selectivity filter. The model is
put in a lipid bilayer, lipids and water that clash with it are removed, and
the system is solvated and ionized. Intermediate files are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := &build.Builder{Config: a.cfg.Build, Runner: a.runner, WorkDir: a.cfg.WorkDir}
			res, err := b.Run(cmd.Context())
			if err != nil {
				if res != nil {
					ctxlog.FromContext(cmd.Context()).Error("Build failed", "tmpdir", res.TmpDir)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Center: %.3f %.3f %.3f\n", res.Water.Center[0], res.Water.Center[1], res.Water.Center[2])
			fmt.Fprintf(cmd.OutOrStdout(), "Box size: %.3f %.3f %.3f\n", res.Water.Size[0], res.Water.Size[1], res.Water.Size[2])
			return nil
		},
	}
	cmd.Flags().String("template", def.Template, "template PDB")
	cmd.Flags().String("topology", def.Topology, "CHARMM topology file")
	cmd.Flags().StringP("output", "o", def.Output, "prefix of the final PSF and PDB")
	cmd.Flags().Float64("salt", def.Salt, "NaCl concentration, mol/L")
	a.bind(cmd, "template", "build.template")
	a.bind(cmd, "topology", "build.topology")
	a.bind(cmd, "output", "build.output")
	a.bind(cmd, "salt", "build.salt")
	return cmd
}

func newConstraintsCmd(a *app) *cobra.Command {
	def := config.Default().Constraints
	cmd := &cobra.Command{
		Use:   "constraints",
		Short: "Write the positional restraint PDB files",
		Long: `Write the positional restraint PDB files: ` + constraints.TailsOnlyPDB + ` (all but the
lipid tails), ` + constraints.ProteinPDB + ` (protein heavy atoms) and ` + constraints.BackboneCAPDB + `
(protein alpha carbons). The coordinates can be a PDB or NAMD binary file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg.Constraints
			_, err := constraints.TRP(cmd.Context(), a.path(c.PSF), a.path(c.Coords), a.path(c.Output), c.TailNames)
			return err
		},
	}
	cmd.Flags().String("psf", def.PSF, "PSF file")
	cmd.Flags().String("coords", def.Coords, "coordinates, PDB or NAMD binary")
	cmd.Flags().StringP("output", "o", def.Output, "output directory")
	a.bind(cmd, "psf", "constraints.psf")
	a.bind(cmd, "coords", "constraints.coords")
	a.bind(cmd, "output", "constraints.output")
	return cmd
}

func newMDFFCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mdff",
		Short: "Write the MDFF potential, weights and restraints",
		Long: `Write the MDFF potential, weights and restraints. A map is simulated from
the template and turned into a potential, and secondary structure, cis-peptide
and chirality restraints are written for the model to avoid overfitting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := constraints.MDFF(cmd.Context(), a.runner, a.cfg.MDFF, a.cfg.WorkDir)
			return err
		},
	}
}

func newFEPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fep FORWARD BACKWARD",
		Short: "Repair truncated FEP outputs and run parsefep on them",
		Long: `Repair truncated FEP outputs and run parsefep on them.

NAMD doesn't write the free energy record of the last window when a run is
cut short. The record is rebuilt from the last energies, appended to copies of
both outputs in the output directory, and parsefep is run there with BAR.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fep.Run(cmd.Context(), a.runner, args[0], args[1], a.path(a.cfg.FEP.Output))
		},
	}
	cmd.Flags().StringP("output", "o", config.Default().FEP.Output, "output directory")
	a.bind(cmd, "output", "fep.output")
	return cmd
}

func newDistancesCmd(a *app) *cobra.Command {
	def := config.Default().Distances
	cmd := &cobra.Command{
		Use:   "distances",
		Short: "Collect distances between atom groups over trajectories",
		Long: `Collect distances between atom groups over trajectories. One data file is
written per prefix, with a column per collector and a row per frame.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := a.cfg.Distances
			top, err := prep.PSFFileRead(a.path(d.PSF))
			if err != nil {
				return err
			}
			newCols := func() []analysis.Collector {
				cols := make([]analysis.Collector, len(d.Collectors))
				for i, c := range d.Collectors {
					cols[i] = analysis.NewDistanceCollector(c.Name, c.A, c.B)
				}
				return cols
			}
			jobs := analysis.JobsFromPrefixes(a.cfg.WorkDir, d.Prefixes, d.Trajectories, d.Output)
			return analysis.Analyze(cmd.Context(), top, newCols, jobs, analysis.Options{Workers: d.Workers, Plot: d.Plot, Bins: d.Bins})
		},
	}
	cmd.Flags().String("psf", def.PSF, "PSF file")
	cmd.Flags().Bool("plot", def.Plot, "also write a PNG plot per data file")
	cmd.Flags().Int("workers", def.Workers, "trajectories read at the same time, one per CPU if 0")
	a.bind(cmd, "psf", "distances.psf")
	a.bind(cmd, "plot", "distances.plot")
	cmd.Flags().Int("bins", def.Bins, "if positive, also write a histogram per collector with this many bins")
	a.bind(cmd, "workers", "distances.workers")
	a.bind(cmd, "bins", "distances.bins")
	return cmd
}

func newTailsCmd(a *app) *cobra.Command {
	def := config.Default().Tails
	cmd := &cobra.Command{
		Use:   "tails",
		Short: "Download the C-terminal tails of TRP channels from UniProt",
		Long: `Download the C-terminal tails of TRP channels from UniProt, from a few residues
before the last transmembrane helix on, and write them as FASTA, sorted by name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := a.cfg.Tails
			c := &uniprot.Client{
				BaseURL:  t.BaseURL,
				HTTP:     &http.Client{Timeout: time.Duration(t.TimeoutSec) * time.Second},
				PageSize: t.PageSize,
			}
			opts := uniprot.TailOptions{Before: t.Before, After: t.After, Override: t.Override}
			tails, err := c.Collect(cmd.Context(), t.Query, t.Extra, opts)
			if err != nil {
				return err
			}
			out := a.path(t.Output)
			if err := uniprot.WriteFASTAFile(out, tails); err != nil {
				return err
			}
			ctxlog.FromContext(cmd.Context()).Info("Wrote tails", "file", out, "sequences", len(tails))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", def.Output, "FASTA file")
	a.bind(cmd, "output", "tails.output")
	return cmd
}
