package idhash

import (
	"fmt"

	"github.com/google/uuid"
)

// runNamespace scopes optimization run ids.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("lotto-lab/optimization-run"))

// ComputeRunID computes a deterministic optimization run id.
// Formula: UUIDv5(strategy|threshold|from|to|seed|created_unix_nano)
func ComputeRunID(strategy string, threshold, from, to int, seed uint64, createdUnixNano int64) string {
	data := fmt.Sprintf("%s|%d|%d|%d|%d|%d", strategy, threshold, from, to, seed, createdUnixNano)
	return uuid.NewSHA1(runNamespace, []byte(data)).String()
}
