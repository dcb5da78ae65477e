package utils

import "os"

var (
	HTTP_PORT          = GetEnvOrDefault("HTTP_PORT", "8080")
	SHUTDOWN_SLEEP_SEC = GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	// 256MB
	MAX_BODY_BYTES = GetEnvOrDefault("MAX_BODY_BYTES", "256M")

	// disk or s3
	DATASTORE = GetEnvOrDefault("DATASTORE", "disk")
	DISK_ROOT = GetEnvOrDefault("DISK_ROOT", "./data")

	// Catalog is disabled when empty
	CRDB_DSN = os.Getenv("CRDB_DSN")

	AWS_ACCESS_KEY_ID     = os.Getenv("AWS_ACCESS_KEY_ID")
	AWS_SECRET_ACCESS_KEY = os.Getenv("AWS_SECRET_ACCESS_KEY")
	AWS_DEFAULT_REGION    = GetEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1")

	S3_BUCKET_NAME = os.Getenv("S3_BUCKET_NAME")
	S3_ENDPOINT    = os.Getenv("S3_ENDPOINT")
)
