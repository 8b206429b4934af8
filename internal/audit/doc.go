// Package audit stores the trail of commands the bridge has executed.
//
// Every command, whether it arrived over MQTT or the REST API, produces one
// Entry with its outcome. Entries are append-only and listed newest first.
package audit
