/*
 * atomicdata.go, part of trpprep
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

package prep

import (
	"math"
	"strings"
)

// A map for assigning mass to elements.
// Note that just common "bio-elements" are present
var symbolMass = map[string]float64{
	"H":  1.008,
	"C":  12.011,
	"O":  15.999,
	"N":  14.007,
	"P":  30.974,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.098,
	"Ca": 40.08,
	"Mg": 24.305,
	"Cl": 35.45,
	"Na": 22.99,
	"Cs": 132.905,
	"Li": 6.941,
	"Cu": 63.55,
	"Zn": 65.38,
	"Fe": 55.845,
	"Mn": 54.94,
	"F":  18.998,
}

// residue names of the ions the CHARMM topologies (and autoionize) use,
// mapped to their elements.
var ionResidues = map[string]string{
	"SOD": "Na",
	"NA":  "Na",
	"CLA": "Cl",
	"CL":  "Cl",
	"POT": "K",
	"K":   "K",
	"CAL": "Ca",
	"CA2": "Ca",
	"MG":  "Mg",
	"ZN":  "Zn",
	"ZN2": "Zn",
	"CES": "Cs",
	"LIT": "Li",
}

var aminoacids = map[string]bool{
	"ALA": true, "ARG": true, "ASN": true, "ASP": true, "CYS": true,
	"GLN": true, "GLU": true, "GLY": true, "HIS": true, "ILE": true,
	"LEU": true, "LYS": true, "MET": true, "PHE": true, "PRO": true,
	"SER": true, "THR": true, "TRP": true, "TYR": true, "VAL": true,
	//CHARMM/AMBER protonation variants
	"HSD": true, "HSE": true, "HSP": true, "HID": true, "HIE": true,
	"HIP": true, "CYX": true, "ASH": true, "GLH": true, "LYN": true,
	"SEC": true, "MSE": true,
}

var waters = map[string]bool{
	"TIP3": true, "TIP3P": true, "TP3M": true, "TIP4": true, "TIP4P": true,
	"HOH": true, "WAT": true, "SOL": true, "H2O": true, "SPC": true,
	"T3P": true, "TIP": true,
}

var lipids = map[string]bool{
	"POPC": true, "POPE": true, "POPS": true, "POPG": true, "POPA": true,
	"DOPC": true, "DOPE": true, "DOPS": true, "DPPC": true, "DPPE": true,
	"DMPC": true, "DMPE": true, "DLPC": true, "DLPE": true, "DSPC": true,
	"DLPS": true, "PLPC": true, "SOPC": true, "CHL1": true, "CHOL": true,
	"PALM": true, "LPPC": true, "PGCL": true, "GPC": true, "PC": true,
}

// IsAminoacid returns true if resname is one of the (CHARMM or AMBER)
// amino acid residue names.
func IsAminoacid(resname string) bool {
	return aminoacids[strings.ToUpper(resname)]
}

// IsWater returns true if resname is a water residue name.
func IsWater(resname string) bool {
	return waters[strings.ToUpper(resname)]
}

// IsLipid returns true if resname is one of the known lipid residue names.
func IsLipid(resname string) bool {
	return lipids[strings.ToUpper(resname)]
}

// IsIon returns true if resname is a monoatomic ion residue name.
func IsIon(resname string) bool {
	_, ok := ionResidues[strings.ToUpper(resname)]
	return ok
}

// symbolFromMass returns the element with the mass closest to mass, if
// any is closer than 0.6 amu.
func symbolFromMass(mass float64) string {
	best := ""
	bestdiff := 0.6
	for symbol, m := range symbolMass {
		if d := math.Abs(m - mass); d < bestdiff {
			best = symbol
			bestdiff = d
		}
	}
	return best
}

// symbolFromName tries to guess a chemical element symbol from an atom and residue name.
// It only deals with some common bio-elements.
func symbolFromName(name, resname string) string {
	if el, ok := ionResidues[strings.ToUpper(resname)]; ok {
		return el
	}
	name = strings.TrimLeft(strings.ToUpper(name), "0123456789")
	if name == "" {
		return ""
	}
	switch name[0] {
	case 'H', 'C', 'N', 'O', 'P', 'S':
		return name[:1]
	case 'F':
		if strings.HasPrefix(name, "FE") {
			return "Fe"
		}
		return "F"
	case 'Z':
		if strings.HasPrefix(name, "ZN") {
			return "Zn"
		}
	}
	return ""
}

// guessSymbol sets the atom's symbol if it is empty, from its mass if known,
// or from its name otherwise.
func guessSymbol(at *Atom) {
	if at.Symbol != "" {
		return
	}
	if at.Mass > 0 {
		at.Symbol = symbolFromMass(at.Mass)
	}
	if at.Symbol == "" {
		at.Symbol = symbolFromName(at.Name, at.MolName)
	}
}
