package storage_test

import (
	"github.com/JakeFAU/tzverify/internal/codec"
	"github.com/JakeFAU/tzverify/internal/storage"
	"github.com/JakeFAU/tzverify/internal/storage/gcs"
	"github.com/JakeFAU/tzverify/internal/storage/local"
	"github.com/JakeFAU/tzverify/internal/storage/memory"
	"github.com/JakeFAU/tzverify/internal/verifier"
)

var (
	_ storage.BlobStore = (*memory.BlobStore)(nil)
	_ storage.BlobStore = (*local.BlobStore)(nil)
	_ storage.BlobStore = (*gcs.BlobStore)(nil)
	_ storage.BlobStore = (*storage.MockBlobStore)(nil)

	_ codec.BlobStore    = storage.BlobStore(nil)
	_ verifier.BlobStore = storage.BlobStore(nil)
)
