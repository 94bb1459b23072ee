// Package kitsu is a small REST client for the Kitsu (Zou) production
// tracker. It covers only the calls shotsync needs: login, project and
// sequence lookup, CSV shot import, task listing, and the comment/preview
// sequence used to publish clips.
package kitsu
