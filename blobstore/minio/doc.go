// Package minio provides a blobstore.Store for MinIO and other S3-compatible
// object stores, using the minio-go client.
//
//	client, _ := minio.Dial("localhost:9000", "access", "secret", false)
//	store := minio.NewStore(client, "reports", "hast/")
//	st, _ := hast.Open(ctx, hast.Remote(store))
package minio
