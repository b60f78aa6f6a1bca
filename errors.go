/*
 * errors.go, part of trpprep
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
	"errors"
	"fmt"
)

// Error is the error type for the prep package. Besides the message, it keeps the file involved,
// if any, and a "decoration": the list of functions in the calling stack, each
// with any relevant information, in the format "FunctionName: Extra info".
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
	err      error
}

// Error returns a string with an error message.
func (err Error) Error() string {
	if err.filename != "" {
		return fmt.Sprintf("%s (file: %s)", err.message, err.filename)
	}
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// FileName returns the name of the file related to the error, if any.
func (err Error) FileName() string { return err.filename }

// Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

// Unwrap returns the underlying error, if any.
func (err Error) Unwrap() error { return err.err }

// newError returns a critical *Error for the file filename, originated in caller.
// err can be nil.
func newError(message, filename, caller string, err error) *Error {
	if err != nil && message == "" {
		message = err.Error()
	}
	return &Error{message: message, filename: filename, deco: []string{caller}, critical: true, err: err}
}

// errDecorate adds the caller's name to the decoration of err if err is a *Error. Other
// errors are returned as they are.
func errDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}

var (
	// ErrNoAtoms is returned when an operation needs at least one atom and got none.
	ErrNoAtoms = errors.New("no atoms selected")
	// ErrMismatch is returned when a coordinate set and a topology differ in their number of atoms.
	ErrMismatch = errors.New("number of atoms in topology and coordinates differ")
)

func asError(err error, target **Error) bool {
	return errors.As(err, target)
}
