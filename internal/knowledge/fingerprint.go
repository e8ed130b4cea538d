package knowledge

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/nickcecere/mindhub/internal/store"
)

// Fingerprint hashes the ordered content of records. Timestamps are ignored.
func Fingerprint(records []store.Record) string {
	h := xxhash.New()
	for _, r := range records {
		for _, field := range []string{r.ID, r.Title, r.Section, r.Content, r.Category, r.Tags} {
			h.WriteString(field)
			h.Write([]byte{0})
		}
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// documentID derives a stable id so chunk ids survive a reseed.
func documentID(section, title string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(section+"\x00"+title))
}
