package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrFailedToCreateIndexes  = errors.New("failed to create backup code indexes")
)
