/*
 * tail.go, part of trpprep
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

package uniprot

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"

	"github.com/rmera/trpprep/internal/ctxlog"
)

// TailOptions sets which part of a sequence is taken as its tail.
type TailOptions struct {
	Before int //residues kept before the transmembrane region.
	After  int //residues kept after the transmembrane region.
	//Override maps entry names (case is ignored) to the position, counted from the end (1 is the last one),
	//of the transmembrane region to use. The last one is used for other entries.
	Override map[string]int
}

// DefaultTailOptions returns the options used for TRP channels.
func DefaultTailOptions() TailOptions {
	return TailOptions{Before: 5, After: 40, Override: map[string]int{"TRPM1_HUMAN": 2}}
}

// Tail is the sequence around a transmembrane region of an entry.
type Tail struct {
	Name      string
	Accession string
	Organism  string
	Begin     int //1-based, inclusive, in the full sequence.
	End       int
	Sequence  string
}

// GetTail returns the tail of the entry, or nil if the entry has no transmembrane regions.
func GetTail(E *Entry, opts TailOptions) (*Tail, error) {
	tm := E.Transmembrane()
	if len(tm) == 0 {
		return nil, nil
	}
	fromEnd := 1
	for name, n := range opts.Override {
		if n > 0 && strings.EqualFold(name, E.Name) {
			fromEnd = n
		}
	}
	if fromEnd > len(tm) {
		return nil, fmt.Errorf("uniprot: %s has %d transmembrane regions, can't take number %d from the end", E.Name, len(tm), fromEnd)
	}
	begin, end, err := tm[len(tm)-fromEnd].Span()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", E.Name, err)
	}
	s := E.Sequence()
	first := max(begin-opts.Before-1, 0)
	last := min(len(s), end+opts.After)
	if first >= last {
		return nil, fmt.Errorf("uniprot: %s: transmembrane region %d-%d outside of a sequence of length %d", E.Name, begin, end, len(s))
	}
	return &Tail{
		Name:      E.Name,
		Accession: E.Accession(),
		Organism:  E.ScientificName(),
		Begin:     first + 1,
		End:       last,
		Sequence:  s[first:last],
	}, nil
}

// Collect gets the tails of all the entries matching query, and then those of the
// accessions in extra that were not already among the results. Each entry is taken
// once, by primary accession, even if it is found more than once. Entries without
// transmembrane regions are skipped.
func (C *Client) Collect(ctx context.Context, query string, extra []string, opts TailOptions) ([]*Tail, error) {
	log := ctxlog.FromContext(ctx)
	found, err := C.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	log.Info("Search finished", "query", query, "entries", len(found))
	var entries []Entry
	seen := make(map[string]bool) //every accession of the entries taken.
	add := func(more []Entry) {
		for _, e := range more {
			if seen[e.Accession()] {
				log.Debug("Skipping repeated entry", "accession", e.Accession(), "name", e.Name)
				continue
			}
			for _, a := range e.Accessions {
				seen[a] = true
			}
			entries = append(entries, e)
		}
	}
	add(found)
	for _, acc := range extra {
		if seen[acc] {
			log.Debug("Accession already among the search results", "accession", acc)
			continue
		}
		more, err := C.Entry(ctx, acc)
		if err != nil {
			return nil, err
		}
		add(more)
	}
	var ret []*Tail
	for i := range entries {
		t, err := GetTail(&entries[i], opts)
		if err != nil {
			return nil, err
		}
		if t == nil {
			log.Warn("Entry has no transmembrane regions", "name", entries[i].Name)
			continue
		}
		ret = append(ret, t)
	}
	return ret, nil
}

// WriteFASTA writes the tails to w, sorted by name, in FASTA format.
func WriteFASTA(w io.Writer, tails []*Tail) error {
	sorted := make([]*Tail, len(tails))
	copy(sorted, tails)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	entries := make([]seq.Sequence, 0, len(sorted))
	for _, t := range sorted {
		res := make([]seq.Residue, len(t.Sequence))
		for i := 0; i < len(t.Sequence); i++ {
			res[i] = seq.Residue(t.Sequence[i])
		}
		entries = append(entries, seq.Sequence{Name: t.Name, Residues: res})
	}
	if err := fasta.NewWriter(w).WriteAll(entries); err != nil {
		return fmt.Errorf("uniprot: writing FASTA: %w", err)
	}
	return nil
}

// WriteFASTAFile writes the tails to the file name, which is overwritten if it exists.
func WriteFASTAFile(name string, tails []*Tail) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := WriteFASTA(f, tails); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
