// Package publish attaches exported clips to their Kitsu tasks as previews.
//
// MapTasks joins the project's tasks to shot names; Orchestrator then walks
// the clips one at a time and runs comment, preview upload and set-main for
// each. A failing clip is tallied and logged and the batch carries on.
package publish
