// Package resolve works out which courses a student's message is about and
// whether it declares the student's level.
package resolve
