/*
 * build.go, part of trpprep
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

// Package build builds a model of a tetrameric TRP channel from a template structure,
// embeds it in a lipid bilayer, solvates it and ionizes it. The steps that need
// psfgen, membrane, solvate or autoionize are run in VMD, the rest is done here.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	prep "github.com/rmera/trpprep"
	"github.com/rmera/trpprep/internal/config"
	"github.com/rmera/trpprep/internal/ctxlog"
	"github.com/rmera/trpprep/vmd"
)

// Builder runs the whole building pipeline.
type Builder struct {
	Config config.Build
	Runner vmd.Runner
	// WorkDir is the directory relative paths in Config are taken from. The current one if empty.
	WorkDir string
}

// Result has the location of the built system and its dimensions.
type Result struct {
	TmpDir string //intermediate files.
	PSF    string
	PDB    string
	Water  *Box
}

func (B *Builder) path(p string) string {
	if filepath.IsAbs(p) || B.WorkDir == "" {
		return p
	}
	return filepath.Join(B.WorkDir, p)
}

func (B *Builder) tmpDir() (string, error) {
	if B.Config.TmpDir != "" {
		dir, err := filepath.Abs(B.path(B.Config.TmpDir))
		if err != nil {
			return "", err
		}
		return dir, os.MkdirAll(dir, 0o755)
	}
	return os.MkdirTemp("", "vmd_")
}

// Run builds the system. The intermediate files are kept in a temporary directory
// whose path is logged and returned, also on failure if it was already created.
func (B *Builder) Run(ctx context.Context) (*Result, error) {
	log := ctxlog.FromContext(ctx)
	cfg := B.Config
	tmp, err := B.tmpDir()
	if err != nil {
		return nil, fmt.Errorf("build: creating the temporary directory: %w", err)
	}
	res := &Result{TmpDir: tmp}
	log.Info("Intermediate files will be kept", "dir", tmp)
	in := func(name string) string { return filepath.Join(tmp, name) }

	template, err := prep.PDBFileRead(B.path(cfg.Template))
	if err != nil {
		return res, err
	}
	if err := PrepareTemplate(template, cfg.Rotate); err != nil {
		return res, err
	}
	segs, err := WriteSegments(template, cfg.Chains, cfg.Segments, tmp)
	if err != nil {
		return res, err
	}
	log.Info("Wrote template segments", "segments", len(segs))

	topology, err := filepath.Abs(B.path(cfg.Topology))
	if err != nil {
		return res, err
	}
	if err := B.Runner.Run(ctx, "build-model", ModelScript(cfg, topology, segs, in("model"))); err != nil {
		return res, err
	}
	if err := B.Runner.Run(ctx, "build-membrane", MembraneScript(cfg.Membrane, in("membrane"))); err != nil {
		return res, err
	}
	model, err := prep.LoadStructure(in("model.psf"), in("model.pdb"))
	if err != nil {
		return res, err
	}
	membrane, err := prep.LoadStructure(in("membrane.psf"), in("membrane.pdb"))
	if err != nil {
		return res, err
	}
	if err := CenterMembrane(model, membrane, cfg.Transmembrane[0], cfg.Transmembrane[1]); err != nil {
		return res, err
	}
	good, err := GoodMembrane(membrane, Clashes(ctx, model, membrane), cfg.LipidPore)
	if err != nil {
		return res, err
	}
	log.Info("Membrane cleaned", "atoms", membrane.Len(), "kept", good.Len())
	if err := writeStructure(in("good_membrane"), good); err != nil {
		return res, err
	}
	if err := B.Runner.Run(ctx, "build-merge", MergeScript(topology, in("prot_memb"), in("model"), in("good_membrane"))); err != nil {
		return res, err
	}

	min, max, err := SolvateBox(model, membrane, cfg.Padding)
	if err != nil {
		return res, err
	}
	log.Info("Solvating", "min", min, "max", max)
	s := vmd.NewScript().Require("solvate").Solvate(in("prot_memb.psf"), in("prot_memb.pdb"), in("solvate"), cfg.Boundary, min, max)
	if err := B.Runner.Run(ctx, "build-solvate", s); err != nil {
		return res, err
	}
	solvated, err := prep.LoadStructure(in("solvate.psf"), in("solvate.pdb"))
	if err != nil {
		return res, err
	}
	trimmed, err := TrimWater(ctx, solvated, cfg.WaterPore)
	if err != nil {
		return res, err
	}
	if err := writeStructure(in("initial"), trimmed); err != nil {
		return res, err
	}
	//autoionize replaces water molecules, so the box is measured before it.
	if res.Water, err = MeasureWater(trimmed); err != nil {
		return res, err
	}

	out, err := filepath.Abs(B.path(cfg.Output))
	if err != nil {
		return res, err
	}
	s = vmd.NewScript().Require("autoionize").Autoionize(in("initial.psf"), in("initial.pdb"), out, cfg.Salt)
	if err := B.Runner.Run(ctx, "build-ionize", s); err != nil {
		return res, err
	}
	res.PSF, res.PDB = out+".psf", out+".pdb"
	final, err := prep.LoadStructure(res.PSF, res.PDB)
	if err != nil {
		return res, err
	}
	log.Info("System built", "psf", res.PSF, "atoms", final.Len(), "center", res.Water.Center, "box", res.Water.Size)
	return res, nil
}

// writeStructure writes mol to prefix.psf and prefix.pdb.
func writeStructure(prefix string, mol *prep.Molecule) error {
	if err := prep.PSFFileWrite(prefix+".psf", mol.Topology); err != nil {
		return err
	}
	return prep.PDBFileWrite(prefix+".pdb", mol.Coords[0], mol)
}

// SolvateBox returns the corners of the box to fill with water: the x and y extent of the
// membrane's water, and the z extent of the protein in model plus padding on each side.
func SolvateBox(model, membrane *prep.Molecule, padding float64) (min, max [3]float64, err error) {
	wmin, wmax, err := prep.MinMax(membrane.Coords[0], prep.Select(membrane, 0, prep.Water()))
	if err != nil {
		return min, max, fmt.Errorf("build: membrane water: %w", err)
	}
	pmin, pmax, err := prep.MinMax(model.Coords[0], prep.Select(model, 0, prep.Protein()))
	if err != nil {
		return min, max, fmt.Errorf("build: model protein: %w", err)
	}
	min = [3]float64{wmin[0], wmin[1], pmin[2] - padding}
	max = [3]float64{wmax[0], wmax[1], pmax[2] + padding}
	return min, max, nil
}

// ModelScript returns the psfgen script that builds the protein model, capped with the configured
// patches, plus the hand-placed ions. It writes prefix.psf and prefix.pdb.
func ModelScript(cfg config.Build, topology string, segs []ChainSegment, prefix string) *vmd.Script {
	s := vmd.NewScript().Require("psfgen").Topology(topology)
	for _, a := range cfg.ResidueAliases {
		s.AliasResidue(a.From, a.To)
	}
	for _, a := range cfg.AtomAliases {
		s.AliasAtom(a.ResName, a.From, a.To)
	}
	for _, seg := range segs {
		s.Segment(vmd.Segment{Name: seg.Name, PDB: seg.PDB, First: cfg.First, Last: cfg.Last})
		s.CoordPDB(seg.PDB, seg.Name)
	}
	if len(cfg.Ions) > 0 {
		ions := vmd.Segment{Name: cfg.IonSegment}
		for i, ion := range cfg.Ions {
			ions.Residues = append(ions.Residues, vmd.Residue{ID: i + 1, Name: ion.ResName})
		}
		s.Segment(ions)
		for i, ion := range cfg.Ions {
			name := ion.Name
			if name == "" {
				name = ion.ResName
			}
			s.Coord(cfg.IonSegment, i+1, name, ion.Position)
		}
	}
	return s.GuessCoord().WritePDB(prefix + ".pdb").WritePSF(prefix + ".psf")
}

// MembraneScript returns the script that builds a bilayer patch into prefix.psf and prefix.pdb.
func MembraneScript(m config.Membrane, prefix string) *vmd.Script {
	return vmd.NewScript().Require("membrane").Membrane(m.Lipid, m.X, m.Y, prefix, m.Topology)
}

// MergeScript returns the psfgen script that joins the structures with the given prefixes
// into out.psf and out.pdb.
func MergeScript(topology, out string, parts ...string) *vmd.Script {
	s := vmd.NewScript().Require("psfgen").ResetPSF().Topology(topology)
	for _, p := range parts {
		s.ReadPSF(p + ".psf").CoordPDB(p+".pdb", "")
	}
	return s.WritePSF(out + ".psf").WritePDB(out + ".pdb")
}
