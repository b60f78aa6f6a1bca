/*
 * fep.go, part of trpprep
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

// Package fep repairs NAMD free energy perturbation (FEP) outputs and analyzes them with
// VMD's parsefep plugin.
//
// NAMD doesn't write the "#Free energy change" line for the last lambda window when a
// run ends, and parsefep needs it. FixFile copies an output and appends the missing line,
// computed from the last records in the file.
package fep

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	freeEnergyPrefix = "#Free energy change "
	windowPrefix     = "#NEW FEP WINDOW: "
	energyPrefix     = "FepEnergy: "
)

var (
	// ErrMissingRecord is returned when an output lacks one of the records needed.
	ErrMissingRecord = errors.New("fep: missing record")
	// ErrBadWindow is returned when a record can't be parsed.
	ErrBadWindow = errors.New("fep: malformed record")
	// ErrSameFile is returned when the repaired copy would overwrite the original output.
	ErrSameFile = errors.New("fep: output would overwrite the input")
)

var (
	windowRe    = regexp.MustCompile(`^#NEW FEP WINDOW: LAMBDA SET TO ([-0-9.e]+) LAMBDA2 ([-0-9.e]+)$`)
	netChangeRe = regexp.MustCompile(`net change until now is ([-0-9.]+)$`)
)

// Summary has the data from the last records of an FEP output.
type Summary struct {
	// Lambda and Lambda2 are kept as written by NAMD, since parsefep can fail
	// to match the windows if they are reformatted.
	Lambda  string
	Lambda2 string
	// Delta is the last energy difference (last field of the last FepEnergy record).
	Delta float64
	// NetChange is the net free energy change reported by the last "#Free energy change" record.
	NetChange float64
}

// Scan reads an FEP output and returns the summary of its last window. The output must
// have at least one "#Free energy change", one "#NEW FEP WINDOW" and one "FepEnergy" record.
func Scan(r io.Reader) (*Summary, error) {
	var lastStep, window, energy string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, freeEnergyPrefix):
			lastStep = line
		case strings.HasPrefix(line, windowPrefix):
			window = line
		case strings.HasPrefix(line, energyPrefix):
			energy = line
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fep: reading output: %w", err)
	}
	switch {
	case lastStep == "":
		return nil, fmt.Errorf("%w: no %q line", ErrMissingRecord, strings.TrimSpace(freeEnergyPrefix))
	case window == "":
		return nil, fmt.Errorf("%w: no %q line", ErrMissingRecord, strings.TrimSpace(windowPrefix))
	case energy == "":
		return nil, fmt.Errorf("%w: no %q line", ErrMissingRecord, strings.TrimSpace(energyPrefix))
	}
	m := windowRe.FindStringSubmatch(window)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrBadWindow, window)
	}
	s := &Summary{Lambda: m[1], Lambda2: m[2]}
	fields := strings.Fields(energy)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: %q has no energy fields", ErrBadWindow, energy)
	}
	var err error
	if s.Delta, err = strconv.ParseFloat(fields[len(fields)-1], 64); err != nil {
		return nil, fmt.Errorf("%w: last field of %q: %v", ErrBadWindow, energy, err)
	}
	m = netChangeRe.FindStringSubmatch(lastStep)
	if m == nil {
		return nil, fmt.Errorf("%w: no net change in %q", ErrBadWindow, lastStep)
	}
	if s.NetChange, err = strconv.ParseFloat(m[1], 64); err != nil {
		return nil, fmt.Errorf("%w: net change in %q: %v", ErrBadWindow, lastStep, err)
	}
	return s, nil
}

// Total returns the net free energy change including the last window.
func (S *Summary) Total() float64 {
	return S.NetChange + S.Delta
}

// Line returns the "#Free energy change" record for the last window, without a newline.
func (S *Summary) Line() string {
	return fmt.Sprintf("#Free energy change for lambda window [ %s %s ] is %.4f ; net change until now is %.4f",
		S.Lambda, S.Lambda2, S.Delta, S.Total())
}
