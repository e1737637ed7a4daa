// Package handlers implements the marketplace tools: one handler per
// catalogue entry, bound to the backing store through explicit
// dependencies.
//
// Every handler first decodes its validated arguments into a typed struct
// and then talks to the store. Failures never escape as Go errors; they
// come back as outcomes whose text tells the user what to do next.
package handlers
