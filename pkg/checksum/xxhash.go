package checksum

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Reader hashes everything readable from r.
func Reader(r io.Reader) (string, error) {
	hasher := xxhash.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("failed to copy content to hasher: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// File is one side of an upload.
type File struct {
	Name    string
	Content []byte
}

// Upload fingerprints a GST/Tally file pair, names included, so the same
// bytes uploaded under new names are stored as a new upload and keep their
// names. Each part is length-prefixed, so moving bytes from one part to
// another changes the checksum.
func Upload(gst, tally File) string {
	digest := xxhash.New()
	for _, part := range [][]byte{[]byte(gst.Name), gst.Content, []byte(tally.Name), tally.Content} {
		digest.WriteString(strconv.Itoa(len(part)))
		digest.WriteString(":")
		digest.Write(part)
	}

	return hex.EncodeToString(digest.Sum(nil))
}
