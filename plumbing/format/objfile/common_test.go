package objfile

import "github.com/vcscore/corevcs/plumbing"

// objfileFixtures holds a handful of small loose objects: raw content,
// base64'd zlib-framed bytes as they sit on disk, and the identity the
// content hashes to. Generated once from real tiny blobs/commits and
// kept inline rather than as fixture files, since objfile has no other
// dependency on an on-disk fixture tree.
var objfileFixtures = []struct {
	t       plumbing.ObjectType
	hash    string
	content string
	data    string
}{
	{
		t:       plumbing.BlobObject,
		hash:    "ce013625030ba8dba906f756967f9e9ca394464a",
		content: "aGVsbG8K",
		data:    "eJxLyslPUjBjyEjNycnnAgAdxQQU",
	},
	{
		t:       plumbing.BlobObject,
		hash:    "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391",
		content: "",
		data:    "eJxLyslPUjBgAAAJsAHw",
	},
}
