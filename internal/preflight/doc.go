// Package preflight provides readiness checks for the directories, binaries
// and Kitsu server that shotsync depends on.
//
// The "shotsync status" command renders every result. The ingest command
// runs RunAll before touching the filesystem or Kitsu and stops on the
// first required failure.
package preflight
