package content

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrNoDateInFilename indicates a post filename lacks the expected
// YYYY-MM-DD- prefix. Callers skip the document with a warning; the build
// continues.
var ErrNoDateInFilename = errors.New("post filename does not start with a parseable date")

var datePrefixRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// splitDatePrefix splits a "2022-05-27-title" stem into its date and title
// portions.
func splitDatePrefix(stem string) (date string, rest string, ok bool) {
	m := datePrefixRe.FindStringSubmatch(stem)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Classify assigns the document's publication state and derived fields from
// its storage location and metadata.
//
// Rules:
//   - posts collection: Published; the filename must carry a date prefix
//     (ErrNoDateInFilename otherwise); the metadata date, when valid,
//     overrides the filename date.
//   - drafts collection: Draft. No date prefix required.
//   - anything else: Page.
//   - draft: true metadata forces Draft regardless of location.
func Classify(doc *Document) error {
	switch doc.Collection {
	case CollectionPosts:
		datePart, titlePart, ok := splitDatePrefix(doc.Name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoDateInFilename, doc.Name)
		}
		published, err := time.Parse("2006-01-02", datePart)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrNoDateInFilename, doc.Name)
		}
		if metaDate, ok := doc.Meta.Date(); ok {
			published = metaDate
		}
		doc.PublishedAt = published
		doc.Slug = Slugify(datePart + "-" + titlePart)
		doc.State = StatePublished

	case CollectionDrafts:
		doc.Slug = Slugify(doc.Name)
		doc.State = StateDraft
		if metaDate, ok := doc.Meta.Date(); ok {
			doc.PublishedAt = metaDate
		}

	default:
		doc.Slug = Slugify(doc.Name)
		doc.State = StatePage
		if metaDate, ok := doc.Meta.Date(); ok {
			doc.PublishedAt = metaDate
		}
	}

	// A draft flag in metadata always wins, even for files that physically
	// live under the posts collection.
	if doc.Meta.Draft() {
		doc.State = StateDraft
	}

	doc.WordCount = WordCount(doc.Body)
	return nil
}
