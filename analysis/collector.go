/*
 * collector.go, part of trpprep
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

// Package analysis collects per-frame measurements, such as distances between atom groups,
// over MD trajectories, and summarizes them.
package analysis

import (
	"fmt"

	prep "github.com/rmera/trpprep"
	v3 "github.com/rmera/trpprep/v3"
)

// Collector measures one value per frame.
type Collector interface {
	// Name identifies the collector, it is the column title in the data set.
	Name() string
	// Setup prepares the collector to work with the topology top.
	Setup(top *prep.Topology) error
	// Collect returns the value for one frame.
	Collect(coords *v3.Matrix) (float64, error)
}

// DistanceCollector measures the distance between the geometric centers of two selections.
type DistanceCollector struct {
	Title string
	A, B  prep.Selection
	a, b  []int
}

// NewDistanceCollector returns a collector for the distance between the selections a and b.
func NewDistanceCollector(name string, a, b prep.Selection) *DistanceCollector {
	return &DistanceCollector{Title: name, A: a, B: b}
}

// Name returns the title of the collector.
func (D *DistanceCollector) Name() string {
	return D.Title
}

// Setup selects the atoms of both groups. Each group must have at least one atom.
func (D *DistanceCollector) Setup(top *prep.Topology) error {
	var err error
	if D.a, err = selectGroup(top, D.A); err != nil {
		return fmt.Errorf("%s: first group: %w", D.Title, err)
	}
	if D.b, err = selectGroup(top, D.B); err != nil {
		return fmt.Errorf("%s: second group: %w", D.Title, err)
	}
	return nil
}

func selectGroup(top *prep.Topology, s prep.Selection) ([]int, error) {
	sel, err := s.Selector()
	if err != nil {
		return nil, err
	}
	idx := prep.SelectTopology(top, sel)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%q: %w", s.String(), prep.ErrNoAtoms)
	}
	return idx, nil
}

// Collect returns the distance between the centers of both groups.
func (D *DistanceCollector) Collect(coords *v3.Matrix) (float64, error) {
	if D.a == nil || D.b == nil {
		return 0, fmt.Errorf("%s: collector used before Setup", D.Title)
	}
	ca, err := prep.Center(coords, D.a)
	if err != nil {
		return 0, err
	}
	cb, err := prep.Center(coords, D.b)
	if err != nil {
		return 0, err
	}
	return prep.Distance(ca, cb), nil
}
