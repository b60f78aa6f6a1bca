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

package dcd

import "errors"

// Error is the error type of this package. Besides the message, it carries the file
// involved, the list of functions it went through (in the format "FunctionName: Extra info")
// and whether it is critical.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
	err      error
}

// Error returns a string with an error message.
func (err Error) Error() string {
	if err.filename == "" {
		return "dcd: " + err.message
	}
	return "dcd: " + err.message + " (file: " + err.filename + ")"
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

// FileName returns the name of the file for which the error was raised.
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "dcd") for which the error was raised.
func (err Error) Format() string { return "dcd" }

// Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

// Unwrap returns the underlying error, if any.
func (err Error) Unwrap() error { return err.err }

// LastFrameError is returned by Next when there are no more frames to read.
// It is not critical, it only means that the trajectory has been read completely.
type LastFrameError struct {
	filename string
	deco     []string
}

// Error returns an error message string.
func (E *LastFrameError) Error() string {
	return "dcd: no more frames in " + E.filename
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (E *LastFrameError) Decorate(dec string) []string {
	if dec == "" {
		return E.deco
	}
	E.deco = append(E.deco, dec)
	return E.deco
}

// FileName returns the name of the file for which the error was raised.
func (E *LastFrameError) FileName() string { return E.filename }

// Format returns the format of the file (always "dcd").
func (E *LastFrameError) Format() string { return "dcd" }

// Critical always returns false.
func (E *LastFrameError) Critical() bool { return false }

// NormalLastFrameTermination does nothing, it is there so LastFrameError can be told apart from other errors.
func (E *LastFrameError) NormalLastFrameTermination() {}

// IsLastFrame returns true if err, or any error it wraps, marks the normal end of a trajectory.
func IsLastFrame(err error) bool {
	var l *LastFrameError
	return errors.As(err, &l)
}

func errDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}

// Some error messages.
const (
	trajUnIni      = "traj object uninitialized to read or write"
	notEnoughSpace = "not enough space in passed slice"
	wrongFormat    = "wrong format in DCD"
)
