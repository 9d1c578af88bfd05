// Package mysql builds the one-shot MySQL client pods used to exercise a
// deployment and parses their batch-mode output.
//
// Writes go to the primary through its stable DNS name, reads go through the
// read Service or a specific replica. Every query runs with -N -B so results
// come back as tab-separated rows without headers.
package mysql
