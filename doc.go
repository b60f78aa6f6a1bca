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
Package prep contains the molecular core used to prepare and analyze
simulations of a transmembrane channel: atoms, PSF topologies and
multi-frame coordinates, PDB, PSF and NAMD binary coordinate files,
atom selections written as Go predicates, simple geometry and contact
search.

The heavy work (building membranes, solvating, ionizing, generating MDFF
potentials) is left to VMD and its plugins, see the vmd package. This
package only deals with the files between the VMD stages.
*/
package prep
