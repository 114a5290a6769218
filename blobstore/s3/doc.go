// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("hast/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	st, err := hast.Open(ctx, hast.Remote(store))
//
// Credentials come from the default AWS chain (environment, shared config,
// instance role). WithEndpoint points the client at an S3-compatible service
// and switches to path-style addressing.
package s3
