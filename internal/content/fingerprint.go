package content

import (
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// Fingerprint computes a stable content fingerprint over the document's
// effective front matter and body. Watch mode uses it to skip rebuilds when a
// save did not change effective content.
func (d *Document) Fingerprint() (string, error) {
	serialized, err := frontmatter.SerializeYAML(d.Meta, frontmatter.Style{Newline: "\n"})
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(string(serialized), string(d.Body)), nil
}

// FingerprintSet maps content-relative paths to fingerprints for one scan.
type FingerprintSet map[string]string

// Fingerprints computes the fingerprint of every document. Documents whose
// fingerprint cannot be computed are omitted (forcing a rebuild for them).
func Fingerprints(docs []*Document) FingerprintSet {
	set := make(FingerprintSet, len(docs))
	for _, doc := range docs {
		fp, err := doc.Fingerprint()
		if err != nil {
			continue
		}
		set[doc.RelativePath] = fp
	}
	return set
}

// Equal reports whether two fingerprint sets cover the same paths with the
// same fingerprints.
func (s FingerprintSet) Equal(other FingerprintSet) bool {
	if len(s) != len(other) {
		return false
	}
	for path, fp := range s {
		if other[path] != fp {
			return false
		}
	}
	return true
}
