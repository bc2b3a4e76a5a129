package object

import (
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// MessageUTF8 returns c.Message transcoded to UTF-8 according to its
// declared "encoding" header. git permits a commit's author to record a
// message in any encoding and name it via that header (spec.md §3); most
// callers want UTF-8 regardless of what was recorded, so this does the
// conversion rather than leaving it to every caller.
//
// An absent or already-UTF-8 encoding header returns Message unchanged.
// An encoding name this module doesn't recognize also returns Message
// unchanged rather than erroring — better to hand back the original
// bytes than fail a read over a commit header from an exotic,
// unsupported locale.
func (c *Commit) MessageUTF8() (string, error) {
	if c.Encoding == "" || strings.EqualFold(c.Encoding, "UTF-8") || strings.EqualFold(c.Encoding, "utf8") {
		return c.Message, nil
	}

	enc, err := ianaindex.IANA.Encoding(c.Encoding)
	if err != nil || enc == nil {
		return c.Message, nil
	}

	out, _, err := transform.String(enc.NewDecoder(), c.Message)
	if err != nil {
		return "", err
	}
	return out, nil
}
