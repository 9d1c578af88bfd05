// Package s3 provides a client for S3-compatible object storage.
//
// It covers what SQL dump uploads need: bucket creation, object upload and
// listing. Any endpoint speaking the S3 API works, including MinIO when
// path-style addressing is enabled.
package s3
