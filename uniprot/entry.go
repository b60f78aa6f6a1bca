/*
 * entry.go, part of trpprep
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

// Package uniprot downloads protein entries from UniProtKB and extracts the
// sequence around the last transmembrane region of each one.
package uniprot

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// TransmembraneType is the type of the UniProt features that mark transmembrane regions.
const TransmembraneType = "transmembrane region"

// Position is a sequence position in a feature location.
type Position struct {
	Position int    `xml:"position,attr"`
	Status   string `xml:"status,attr"`
}

// Feature is a sequence annotation of an entry.
type Feature struct {
	Type        string    `xml:"type,attr"`
	Description string    `xml:"description,attr"`
	Begin       *Position `xml:"location>begin"`
	End         *Position `xml:"location>end"`
	Point       *Position `xml:"location>position"`
}

// Span returns the first and last positions (1-based) of the feature.
func (F Feature) Span() (int, int, error) {
	switch {
	case F.Begin != nil && F.End != nil:
		return F.Begin.Position, F.End.Position, nil
	case F.Point != nil:
		return F.Point.Position, F.Point.Position, nil
	}
	return 0, 0, fmt.Errorf("uniprot: %s feature without location", F.Type)
}

// OrganismName is one of the names of an organism.
type OrganismName struct {
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

// Entry is a UniProtKB entry, with only the fields used here.
type Entry struct {
	Accessions []string       `xml:"accession"`
	Name       string         `xml:"name"`
	Organism   []OrganismName `xml:"organism>name"`
	Features   []Feature      `xml:"feature"`
	RawSeq     string         `xml:"sequence"`
}

// Accession returns the primary accession of the entry.
func (E *Entry) Accession() string {
	if len(E.Accessions) == 0 {
		return ""
	}
	return E.Accessions[0]
}

// ScientificName returns the scientific name of the organism, if given.
func (E *Entry) ScientificName() string {
	for _, n := range E.Organism {
		if n.Type == "scientific" {
			return n.Name
		}
	}
	return ""
}

// Sequence returns the sequence of the entry, without whitespace.
func (E *Entry) Sequence() string {
	return strings.Join(strings.Fields(E.RawSeq), "")
}

// Transmembrane returns the transmembrane region features of the entry, in the order given.
func (E *Entry) Transmembrane() []Feature {
	var ret []Feature
	for _, f := range E.Features {
		if f.Type == TransmembraneType {
			ret = append(ret, f)
		}
	}
	return ret
}

type document struct {
	XMLName xml.Name `xml:"uniprot"`
	Entries []Entry  `xml:"entry"`
}

// Decode reads a UniProt XML document and returns its entries.
func Decode(r io.Reader) ([]Entry, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("uniprot: decoding XML: %w", err)
	}
	return doc.Entries, nil
}
