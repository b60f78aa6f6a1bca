/*
 * fix.go, part of trpprep
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

package fep

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rmera/trpprep/internal/ctxlog"
	"github.com/rmera/trpprep/vmd"
)

// FixFile copies the FEP output src into the directory outDir, keeping its base name, and
// appends the record for the last window to the copy. It returns the path of the copy
// and the summary used. The source is never modified: if the copy would be the source
// itself, ErrSameFile is returned.
func FixFile(src, outDir string) (string, *Summary, error) {
	asrc, err := filepath.Abs(src)
	if err != nil {
		return "", nil, fmt.Errorf("fep: %w", err)
	}
	dst, err := filepath.Abs(filepath.Join(outDir, filepath.Base(src)))
	if err != nil {
		return "", nil, fmt.Errorf("fep: %w", err)
	}
	if asrc == dst {
		return "", nil, fmt.Errorf("%w: %s", ErrSameFile, src)
	}
	if st1, err1 := os.Stat(asrc); err1 == nil {
		if st2, err2 := os.Stat(dst); err2 == nil && os.SameFile(st1, st2) {
			return "", nil, fmt.Errorf("%w: %s", ErrSameFile, src)
		}
	}
	data, err := os.ReadFile(asrc)
	if err != nil {
		return "", nil, fmt.Errorf("fep: %w", err)
	}
	sum, err := Scan(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", src, err)
	}
	out := make([]byte, 0, len(data)+128)
	out = append(out, data...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, sum.Line()...)
	out = append(out, '\n')
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return "", nil, fmt.Errorf("fep: %w", err)
	}
	return dst, sum, nil
}

// Run repairs the forward and backward FEP outputs into outDir, which is created if needed,
// and runs parsefep on the copies, with BAR analysis, with outDir as VMD's working directory,
// so parsefep's outputs end up there.
func Run(ctx context.Context, runner vmd.Runner, forward, backward, outDir string) error {
	log := ctxlog.FromContext(ctx)
	out, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("fep: %w", err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("fep: %w", err)
	}
	var fixed [2]string
	for i, f := range []string{forward, backward} {
		dst, sum, err := FixFile(f, out)
		if err != nil {
			return err
		}
		log.Info("Repaired FEP output", "source", f, "copy", dst, "lambda", sum.Lambda, "lambda2", sum.Lambda2,
			"delta", sum.Delta, "net_change", sum.Total())
		fixed[i] = dst
	}
	s := vmd.NewScript().Cd(out).Require("parsefep").ParseFEP(fixed[0], fixed[1])
	if err := runner.Run(ctx, "parsefep", s); err != nil {
		return fmt.Errorf("fep: parsefep: %w", err)
	}
	return nil
}
