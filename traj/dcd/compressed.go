/*
 * compressed.go, part of trpprep
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

package dcd

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// source is a decompressing reader over a file.
type source struct {
	io.Reader
	closers []func() error
}

func (s *source) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openSource opens fname, and returns a reader with its content, transparently
// decompressing gzip (.gz) and zstd (.zst, .zstd) files. Files with other extensions are read as plain DCD.
func openSource(fname string) (io.ReadCloser, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, &Error{message: err.Error(), filename: fname, deco: []string{"os.Open", "openSource"}, critical: true, err: err}
	}
	buffered := bufio.NewReaderSize(f, 1<<16)
	src := &source{Reader: buffered, closers: []func() error{f.Close}}
	ext := strings.ToLower(fname)
	switch {
	case strings.HasSuffix(ext, ".gz"):
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			f.Close()
			return nil, &Error{message: err.Error(), filename: fname, deco: []string{"gzip.NewReader", "openSource"}, critical: true, err: err}
		}
		src.Reader = gz
		src.closers = append([]func() error{gz.Close}, src.closers...)
	case strings.HasSuffix(ext, ".zst") || strings.HasSuffix(ext, ".zstd"):
		zs, err := zstd.NewReader(buffered)
		if err != nil {
			f.Close()
			return nil, &Error{message: err.Error(), filename: fname, deco: []string{"zstd.NewReader", "openSource"}, critical: true, err: err}
		}
		src.Reader = zs
		src.closers = append([]func() error{func() error { zs.Close(); return nil }}, src.closers...)
	}
	return src, nil
}
