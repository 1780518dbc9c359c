package member

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// GravatarURL derives the avatar URL for an email address: the MD5 hex
// digest of the lowercased, trimmed address. The hash is the public
// gravatar convention, not a security boundary.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=250&d=blank", hex.EncodeToString(sum[:]))
}
