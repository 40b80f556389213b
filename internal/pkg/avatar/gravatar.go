package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

const gravatarBase = "//www.gravatar.com/avatar/"

// Gravatar returns the 200px, pg-rated avatar URL for email, falling back to
// the "mystery man" image. The same email always yields the same URL.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")
	return gravatarBase + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
