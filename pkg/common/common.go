package common

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

func node() *snowflake.Node {
	idNodeOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
		idNode = n
	})
	return idNode
}

// UUIDint64 returns a new snowflake id
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// UUIDBase32 returns a new snowflake id in its short base32 form
func UUIDBase32() string {
	return node().Generate().Base32()
}

// ParseInt64 parses a decimal id, reporting ok=false for anything else.
func ParseInt64(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

