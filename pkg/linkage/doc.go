// Package linkage models planar mechanisms built from grounds, rotary
// cranks, hinges and sliders, and solves them for a drive angle.
// A Mechanism is mutated in place by one owner at a time; nothing in this
// package locks.
package linkage
