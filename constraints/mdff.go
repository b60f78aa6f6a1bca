/*
 * mdff.go, part of trpprep
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

package constraints

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rmera/trpprep/internal/config"
	"github.com/rmera/trpprep/internal/ctxlog"
	"github.com/rmera/trpprep/vmd"
)

// MDFFOutputs are the files written by the MDFF script, relative to its directory.
type MDFFOutputs struct {
	Map, Potential, Weights string
	HBonds, CisPeptide      string
	Chirality               string
}

// Outputs returns the names of the files the MDFF setup writes.
func Outputs(prefix string) MDFFOutputs {
	return MDFFOutputs{
		Map:        prefix + "-map.situs",
		Potential:  prefix + "-potential.dx",
		Weights:    prefix + "-weights.pdb",
		HBonds:     prefix + "-hbonds.dat",
		CisPeptide: prefix + "-cispeptide.dat",
		Chirality:  prefix + "-chirality.dat",
	}
}

// MDFFScript returns the script that loads the model and the template, simulates a map from
// the template, turns it into the MDFF potential, writes the per-atom weights of the model,
// and writes the secondary structure, cis-peptide and chirality restraints for the model.
// If dir is not empty, the script works from there.
func MDFFScript(cfg config.MDFF, dir string) *vmd.Script {
	out := Outputs(cfg.Prefix)
	s := vmd.NewScript()
	if dir != "" {
		s.Cd(dir)
	}
	return s.
		MolNew("m", cfg.PSF, cfg.PDB).
		MolNew("t", cfg.TemplatePSF, cfg.TemplatePDB).
		Require("mdff").
		MDFFSim(vmd.Sel("t", cfg.Selection), cfg.Resolution, out.Map).
		MDFFGridDX(out.Map, out.Potential).
		MDFFGridPDB(cfg.PSF, cfg.PDB, out.Weights).
		Require("ssrestraints").
		SSRestraints(cfg.PSF, cfg.PDB, out.HBonds).
		Require("cispeptide").
		CisPeptideRestrain("m", out.CisPeptide).
		Require("chirality").
		ChiralityRestrain("m", out.Chirality)
}

// MDFF runs the MDFF setup in dir. Relative paths in cfg are taken from dir, and the
// input files must exist.
func MDFF(ctx context.Context, runner vmd.Runner, cfg config.MDFF, dir string) (MDFFOutputs, error) {
	adir, err := filepath.Abs(dir)
	if err != nil {
		return MDFFOutputs{}, fmt.Errorf("constraints: %w", err)
	}
	for _, f := range []string{cfg.PSF, cfg.PDB, cfg.TemplatePSF, cfg.TemplatePDB} {
		p := f
		if !filepath.IsAbs(p) {
			p = filepath.Join(adir, p)
		}
		if _, err := os.Stat(p); err != nil {
			return MDFFOutputs{}, fmt.Errorf("constraints: MDFF input: %w", err)
		}
	}
	if err := runner.Run(ctx, "mdff", MDFFScript(cfg, adir)); err != nil {
		return MDFFOutputs{}, fmt.Errorf("constraints: mdff: %w", err)
	}
	out := Outputs(cfg.Prefix)
	ctxlog.FromContext(ctx).Info("Wrote MDFF files", "dir", adir, "potential", out.Potential, "weights", out.Weights)
	return out, nil
}
