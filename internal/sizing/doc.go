// Package sizing estimates a shopper's ideal garment measurements from the
// clothes they reported as fitting well and recommends the closest size of a
// new garment.
//
// Everything in this package is a pure function of its inputs.
package sizing
