// Command shotsync turns a shot breakdown spreadsheet into a Kitsu import,
// optionally cuts per-shot clips from the edit, and publishes them after the
// local and remote shot lists have been reconciled.
//
// Every command that changes Kitsu shows the discrepancy report first and
// waits for an explicit yes on stdin.
package main
