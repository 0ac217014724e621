// Package storage keeps signature photos and exported signature images in
// S3-compatible object storage.
//
// Uploads are detected by magic bytes and validated before they leave the
// process:
//
//	store, err := storage.New(storage.Config{
//		Bucket:    cfg.S3Bucket,
//		AccessKey: cfg.S3AccessKey,
//		SecretKey: cfg.S3SecretKey,
//		Endpoint:  cfg.S3Endpoint,
//		PublicURL: cfg.S3PublicURL,
//	})
//
//	info, err := storage.PutFile(ctx, store, fh,
//		storage.WithPrefix("email-signatures"),
//		storage.WithACL(storage.ACLPublicRead),
//		storage.WithValidation(storage.MaxSize(2<<20), storage.ImageOnly()),
//	)
//	var verr *storage.FileValidationError
//	if errors.As(err, &verr) {
//		// verr.Code is one of the ErrCode* constants
//	}
//
//	url, err := store.URL(ctx, info.Key, storage.WithPublic())
//
// Public objects resolve to Config.PublicURL when set, otherwise to the
// endpoint (path-style for MinIO) or the AWS virtual-hosted URL. Private
// objects get a presigned GET URL.
package storage
