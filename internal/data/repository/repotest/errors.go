package repotest

import "errors"

var (
	errDuplicate  = errors.New("repotest: duplicate key")
	errForeignKey = errors.New("repotest: foreign key violation")
)
