/*
 * plugins.go, part of trpprep
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

package vmd

import (
	"fmt"
	"strconv"
)

// MolNew adds commands to load a molecule from the given files (for instance a PSF
// and a PDB) and keep its ID in the Tcl variable varname.
func (S *Script) MolNew(varname string, files ...string) *Script {
	if len(files) == 0 {
		return S
	}
	S.Cmd(Raw("set"), Raw(varname), Raw("[mol new "+Quote(files[0])+" waitfor all]"))
	for _, f := range files[1:] {
		S.Cmd(Raw("mol"), Raw("addfile"), f, Raw("waitfor"), Raw("all"), Raw("molid"), Raw("$"+varname))
	}
	return S
}

// Sel returns a command substitution that creates an atom selection with the text sel
// in the molecule with the ID kept in the Tcl variable molvar.
func Sel(molvar, sel string) Raw {
	return Raw(fmt.Sprintf("[atomselect $%s %s]", molvar, Quote(sel)))
}

/*** psfgen ***/

// Residue is a residue added explicitly to a psfgen segment.
type Residue struct {
	ID   int
	Name string
}

// Segment describes a psfgen segment.
type Segment struct {
	Name     string
	PDB      string //read the residues from this PDB, if not empty.
	First    string //patch for the first residue, if not empty.
	Last     string //patch for the last residue, if not empty.
	Residues []Residue
	Auto     string //auto-generation options, such as "angles dihedrals", if not empty.
}

// Topology adds a psfgen topology command.
func (S *Script) Topology(file string) *Script {
	return S.Cmd(Raw("topology"), file)
}

// AliasResidue adds a psfgen pdbalias for a residue name.
func (S *Script) AliasResidue(from, to string) *Script {
	return S.Cmd(Raw("pdbalias"), Raw("residue"), from, to)
}

// AliasAtom adds a psfgen pdbalias for an atom name in a residue.
func (S *Script) AliasAtom(resname, from, to string) *Script {
	return S.Cmd(Raw("pdbalias"), Raw("atom"), resname, from, to)
}

// Segment adds a psfgen segment command.
func (S *Script) Segment(seg Segment) *Script {
	var body []string
	if seg.PDB != "" {
		body = append(body, "pdb "+Quote(seg.PDB))
	}
	for _, r := range seg.Residues {
		body = append(body, "residue "+strconv.Itoa(r.ID)+" "+Quote(r.Name))
	}
	if seg.First != "" {
		body = append(body, "first "+Quote(seg.First))
	}
	if seg.Last != "" {
		body = append(body, "last "+Quote(seg.Last))
	}
	if seg.Auto != "" {
		body = append(body, "auto "+seg.Auto)
	}
	return S.Cmd(Raw("segment"), seg.Name, Block(body...))
}

// CoordPDB adds a psfgen coordpdb command. segid can be empty, in which case the
// segment IDs are taken from the PDB.
func (S *Script) CoordPDB(file, segid string) *Script {
	if segid == "" {
		return S.Cmd(Raw("coordpdb"), file)
	}
	return S.Cmd(Raw("coordpdb"), file, segid)
}

// Coord adds a psfgen coord command, which sets the position of one atom.
func (S *Script) Coord(segid string, resid int, atom string, pos [3]float64) *Script {
	return S.Cmd(Raw("coord"), segid, resid, atom, pos)
}

// GuessCoord adds the psfgen command to guess the coordinates of missing atoms.
func (S *Script) GuessCoord() *Script {
	return S.Cmd(Raw("guesscoord"))
}

// ReadPSF adds a psfgen readpsf command.
func (S *Script) ReadPSF(file string) *Script {
	return S.Cmd(Raw("readpsf"), file)
}

// ResetPSF adds the psfgen command that clears the current structure.
func (S *Script) ResetPSF() *Script {
	return S.Cmd(Raw("resetpsf"))
}

// WritePSF adds a psfgen writepsf command.
func (S *Script) WritePSF(file string) *Script {
	return S.Cmd(Raw("writepsf"), file)
}

// WritePDB adds a psfgen writepdb command.
func (S *Script) WritePDB(file string) *Script {
	return S.Cmd(Raw("writepdb"), file)
}

/*** membrane, solvate, autoionize ***/

// Membrane adds a command to build a square patch of the lipid bilayer lipid, of
// x by y Å, with the topology given (c27 or c36). The files out.psf and out.pdb are written.
func (S *Script) Membrane(lipid string, x, y float64, out, topology string) *Script {
	return S.Cmd(Raw("membrane"), Raw("-l"), lipid, Raw("-x"), x, Raw("-y"), y, Raw("-o"), out, Raw("-t"), topology)
}

// Solvate adds a solvate command that fills the box between min and max with water, keeping
// water molecules farther than boundary from the solute.
func (S *Script) Solvate(psf, pdb, out string, boundary float64, min, max [3]float64) *Script {
	return S.Cmd(Raw("solvate"), psf, pdb, Raw("-o"), out, Raw("-b"), boundary,
		Raw("-minmax"), Raw("{"+word(min)+" "+word(max)+"}"))
}

// Autoionize adds an autoionize command, which neutralizes the system and sets the NaCl
// concentration to salt (mol/L).
func (S *Script) Autoionize(psf, pdb, out string, salt float64) *Script {
	return S.Cmd(Raw("autoionize"), Raw("-psf"), psf, Raw("-pdb"), pdb, Raw("-o"), out, Raw("-sc"), salt)
}

/*** MDFF and restraints ***/

// MDFFSim adds an "mdff sim" command, which simulates a density map at the resolution res
// from the atoms in sel.
func (S *Script) MDFFSim(sel Raw, res float64, out string) *Script {
	return S.Cmd(Raw("mdff"), Raw("sim"), sel, Raw("-res"), res, Raw("-o"), out)
}

// MDFFGridDX adds an "mdff griddx" command, which turns a map into an MDFF potential.
func (S *Script) MDFFGridDX(in, out string) *Script {
	return S.Cmd(Raw("mdff"), Raw("griddx"), Raw("-i"), in, Raw("-o"), out)
}

// MDFFGridPDB adds an "mdff gridpdb" command, which writes the per-atom MDFF scaling factors.
func (S *Script) MDFFGridPDB(psf, pdb, out string) *Script {
	return S.Cmd(Raw("mdff"), Raw("gridpdb"), Raw("-psf"), psf, Raw("-pdb"), pdb, Raw("-o"), out)
}

// SSRestraints adds an ssrestraints command for hydrogen bond restraints of the secondary structure.
func (S *Script) SSRestraints(psf, pdb, out string) *Script {
	return S.Cmd(Raw("ssrestraints"), Raw("-psf"), psf, Raw("-pdb"), pdb, Raw("-o"), out, Raw("-hbonds"))
}

// CisPeptideRestrain adds a command to write cis-peptide restraints for the molecule in the Tcl variable molvar.
func (S *Script) CisPeptideRestrain(molvar, out string) *Script {
	return S.Cmd(Raw("cispeptide"), Raw("restrain"), Raw("-mol"), Raw("$"+molvar), Raw("-o"), out)
}

// ChiralityRestrain adds a command to write chirality restraints for the molecule in the Tcl variable molvar.
func (S *Script) ChiralityRestrain(molvar, out string) *Script {
	return S.Cmd(Raw("chirality"), Raw("restrain"), Raw("-mol"), Raw("$"+molvar), Raw("-o"), out)
}

/*** FEP ***/

// ParseFEP adds a parsefep command for a forward and a backward FEP output, with BAR analysis.
func (S *Script) ParseFEP(forward, backward string) *Script {
	return S.Cmd(Raw("parsefep"), Raw("-forward"), forward, Raw("-backward"), backward, Raw("-bar"))
}
