// Package backup dumps a MySQL deployment with mysqldump, run from a one-shot
// client pod, and stores the dump in S3-compatible object storage under
// <prefix>/<namespace>/<name>/<UTC timestamp>.sql.
package backup
