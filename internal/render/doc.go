// Package render formats view state as plain text for the terminal.
//
// Every renderer is a pure function of its arguments: no clock reads, no
// map iteration order, no locale. That keeps output byte-stable so it can
// be compared against golden files.
package render
