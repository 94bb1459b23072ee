// Package reconcile compares the local and remote shot ledgers and decides
// whether a run may go on to change anything in Kitsu.
//
// Differences are reported, never resolved: Gate proceeds on a clean report
// and otherwise only when the injected Confirmer says so.
package reconcile
