package badger

import (
	"fmt"
)

// Key prefixes for different data types
const (
	articlePrefix     = "artrec"
	articleLinkPrefix = "artlnk"
	failedArtPrefix   = "failart"
	failedChunkPrefix = "failchk"
	syncRecordPrefix  = "syncrec"
	fingerprintPrefix = "feedfp"
)

// makeArticleKey generates a key for an article by UUID.
func makeArticleKey(uuid string) []byte {
	return []byte(fmt.Sprintf("%s:%s", articlePrefix, uuid))
}

// makeArticleLinkKey generates the unique-link index key for an article.
// The value stored under this key is the owning article's UUID.
func makeArticleLinkKey(link string) []byte {
	return []byte(fmt.Sprintf("%s:%s", articleLinkPrefix, link))
}

// makeFailedArticleKey generates a key for a failure ledger entry by UUID.
func makeFailedArticleKey(uuid string) []byte {
	return []byte(fmt.Sprintf("%s:%s", failedArtPrefix, uuid))
}

// makeFailedChunkKey generates a key for a chunk failure entry.
// The index is zero-padded so lexicographic key order matches chunk order.
func makeFailedChunkKey(uuid string, chunkIndex int) []byte {
	return []byte(fmt.Sprintf("%s:%s:%06d", failedChunkPrefix, uuid, chunkIndex))
}

// makePartialFailedChunkKey generates the prefix covering all chunk failure
// entries for one article.
func makePartialFailedChunkKey(uuid string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", failedChunkPrefix, uuid))
}

// makeSyncRecordKey generates a key for a sync record.
// Namespaces must not contain ':'.
func makeSyncRecordKey(namespace, uuid string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", syncRecordPrefix, namespace, uuid))
}

// makePartialSyncRecordKey generates the prefix covering all sync records in
// a namespace.
func makePartialSyncRecordKey(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", syncRecordPrefix, namespace))
}

// makeFingerprintKey generates a key for a feed fingerprint by feed URL.
func makeFingerprintKey(feedURL string) []byte {
	return []byte(fmt.Sprintf("%s:%s", fingerprintPrefix, feedURL))
}
