/*
 * doc.go, part of trpprep
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

/*
Package vmd drives VMD (Visual Molecular Dynamics) and its plugins.

The work that is done inside VMD is written as a Tcl Script, with helpers
for the plugins that are used (psfgen, membrane, solvate, autoionize,
mdff, ssrestraints, cispeptide, chirality and parsefep). A Runner executes
scripts. Exec runs them with a VMD executable in text mode, and Recorder
only keeps them, which is useful to test code that builds scripts.
*/
package vmd
