// Package helper provides shared test helpers for the library engine test
// suites: unique book and card fixtures, arrange-phase shortcuts for storing
// books, registering cards and opening loans, and a schema reset helper.
package helper
