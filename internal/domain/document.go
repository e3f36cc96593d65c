package domain

import "go.mongodb.org/mongo-driver/bson"

// IDKey is the reserved identifier field used as the upsert key.
const IDKey = "_id"

// Document is an ordered document decoded from extended JSON.
type Document = bson.D

// DocumentID returns the identifier value of doc and whether it is present.
func DocumentID(doc Document) (interface{}, bool) {
	for _, e := range doc {
		if e.Key == IDKey {
			return e.Value, true
		}
	}
	return nil, false
}

// Partition splits docs into those carrying an identifier and those without.
// Order inside each group follows the input.
func Partition(docs []Document) (withID, withoutID []Document) {
	for _, doc := range docs {
		if _, ok := DocumentID(doc); ok {
			withID = append(withID, doc)
			continue
		}
		withoutID = append(withoutID, doc)
	}
	return withID, withoutID
}
