package badger

import (
	"encoding/binary"

	"github.com/poiesic/advisor/core"
)

const (
	documentPrefix    = "crsdoc"
	numberIndexPrefix = "crsnum"
	rawIndexPrefix    = "crsraw"
)

// makeDocumentPrefix returns "crsdoc:<collection>:".
func makeDocumentPrefix(collection core.Collection) []byte {
	return []byte(documentPrefix + ":" + collection.Name() + ":")
}

func makeDocumentKey(collection core.Collection, id core.ID) []byte {
	return appendID(makeDocumentPrefix(collection), id)
}

// makeNumberIndexPrefix returns "crsnum:<collection>:<number>:".
func makeNumberIndexPrefix(collection core.Collection, number core.CourseID) []byte {
	return []byte(numberIndexPrefix + ":" + collection.Name() + ":" + string(number) + ":")
}

func makeNumberIndexKey(collection core.Collection, number core.CourseID, id core.ID) []byte {
	return appendID(makeNumberIndexPrefix(collection, number), id)
}

// makeRawIndexPrefix returns "crsraw:<collection>:<digits>:".
func makeRawIndexPrefix(collection core.Collection, raw string) []byte {
	return []byte(rawIndexPrefix + ":" + collection.Name() + ":" + raw + ":")
}

func makeRawIndexKey(collection core.Collection, raw string, id core.ID) []byte {
	return appendID(makeRawIndexPrefix(collection, raw), id)
}

// makeCollectionIndexPrefixes returns the index prefixes that belong to a collection.
func makeCollectionIndexPrefixes(collection core.Collection) [][]byte {
	return [][]byte{
		[]byte(numberIndexPrefix + ":" + collection.Name() + ":"),
		[]byte(rawIndexPrefix + ":" + collection.Name() + ":"),
	}
}

func appendID(prefix []byte, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// BigEndian keeps keys of one prefix in ID order
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
